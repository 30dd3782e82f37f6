package domain

import "encoding/json"

// Wire message types. Names match the browser client's socket events.
const (
	MsgStartCall    = "startCall"
	MsgOffer        = "offer"
	MsgAnswer       = "answer"
	MsgICECandidate = "ice-candidate"
	MsgCallAccepted = "callAccepted"
	MsgCallRejected = "callRejected"
	MsgEndCall      = "endCall"
	MsgIncomingCall = "incomingCall"
	MsgCallEnded    = "callEnded"
	MsgError        = "error"
	MsgPing         = "ping"
	MsgPong         = "pong"
	MsgWhoAmI       = "whoami"
)

// Error codes carried in ErrorMsg.
const (
	CodeInvalidTargetSet = "invalid_target_set"
	CodePeerUnreachable  = "peer_unreachable"
	CodeSessionNotFound  = "session_not_found"
	CodeBadPayload       = "bad_payload"
	CodeRateLimited      = "rate_limited"
)

// IncomingCallMsg invites a target into a freshly created session.
type IncomingCallMsg struct {
	Type         string   `json:"type"`
	From         UserID   `json:"from"`
	CallID       CallID   `json:"callId"`
	Participants []UserID `json:"participants"`
}

// RelayMsg carries an offer, answer or ICE candidate between two
// participants. Payload is forwarded verbatim; the server never parses it.
type RelayMsg struct {
	Type      string          `json:"type"`
	From      UserID          `json:"from"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// CallStateMsg announces accept/reject/end to the other participants.
type CallStateMsg struct {
	Type   string `json:"type"`
	From   UserID `json:"from,omitempty"`
	CallID CallID `json:"callId"`
}

type ErrorMsg struct {
	Type   string `json:"type"`
	Error  string `json:"error"`
	Target UserID `json:"target,omitempty"`
	CallID CallID `json:"callId,omitempty"`
}
