package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultReapInterval = 5 * time.Second

// ExpireInvites auto-rejects every target still ringing past RingTimeout,
// producing the same notifications as an explicit reject.
func (o *Orchestrator) ExpireInvites(now time.Time) []Event {
	if o.RingTimeout <= 0 {
		return nil
	}
	cutoff := now.Add(-o.RingTimeout)
	var events []Event
	for _, inv := range o.Calls.StaleInvites(cutoff) {
		evs, err := o.Reject(inv.Target, inv.CallID)
		if err != nil {
			// The target answered or the session ended since the scan.
			continue
		}
		log.Info().Str("module", "orch").Str("call_id", string(inv.CallID)).Str("target", string(inv.Target)).Msg("invitation expired")
		events = append(events, evs...)
	}
	return events
}

// Run drives the stale-invite reaper until ctx is canceled. A zero
// RingTimeout keeps the historical behavior of ringing forever.
func (o *Orchestrator) Run(ctx context.Context) {
	if o.RingTimeout <= 0 {
		return
	}
	interval := o.ReapInterval
	if interval <= 0 {
		interval = defaultReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			events := o.ExpireInvites(now)
			if len(events) > 0 && o.Deliver != nil {
				o.Deliver(events)
			}
		}
	}
}

// Shutdown closes every live connection and drops all sessions.
func (o *Orchestrator) Shutdown() {
	o.Registry.Shutdown()
	o.Calls.Clear()
}
