// internal/game/timer.go
package game

import (
	"context"
	"time"
)

// StartTurnTimer restarts the room's countdown for the current turn.
// Restart is always cancel-then-start, never adjust-in-place, so two
// countdowns can never run for the same room. Untimed rooms are a no-op.
func (r *Room) StartTurnTimer() {
	r.Mu.Lock()
	r.startTurnTimerLocked()
	r.Mu.Unlock()
}

func (r *Room) startTurnTimerLocked() {
	r.cancelTimerLocked()
	if r.TurnLimitSeconds <= 0 || r.Phase != PhasePlaying {
		return
	}
	r.RemainingSeconds = r.TurnLimitSeconds
	r.timerGen++
	gen := r.timerGen
	ctx, cancel := context.WithCancel(context.Background())
	r.timerCancel = cancel
	interval := r.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	go r.runCountdown(ctx, gen, interval)
}

// CancelTurnTimer stops the countdown if one is running. Idempotent.
func (r *Room) CancelTurnTimer() {
	r.Mu.Lock()
	r.cancelTimerLocked()
	r.Mu.Unlock()
}

func (r *Room) cancelTimerLocked() {
	if r.timerCancel != nil {
		r.timerCancel()
		r.timerCancel = nil
	}
	r.timerGen++
}

// runCountdown emits an immediate tick at the full limit, then decrements
// once per interval. When the count reaches zero it applies the timeout
// transition exactly once: the turn owner ran out of time and loses.
func (r *Room) runCountdown(ctx context.Context, gen int, interval time.Duration) {
	if !r.emitTick(gen) {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Mu.Lock()
			if gen != r.timerGen || r.Phase != PhasePlaying {
				// Superseded by a move, a cancel, or room teardown.
				r.Mu.Unlock()
				return
			}
			r.RemainingSeconds--
			if r.RemainingSeconds <= 0 {
				winner := 1 - r.TurnOwner
				done := r.finishLocked(winner, ReasonTimeout)
				r.Mu.Unlock()
				done()
				return
			}
			r.Mu.Unlock()
			if !r.emitTick(gen) {
				return
			}
		}
	}
}

// emitTick broadcasts the current countdown value and reports whether this
// timer generation is still live. The liveness check and the enqueue happen
// under one lock hold, so a finished room can never tick after its gameOver.
func (r *Room) emitTick(gen int) bool {
	r.Mu.Lock()
	if gen != r.timerGen || r.Phase != PhasePlaying {
		r.Mu.Unlock()
		return false
	}
	r.broadcast(Event{Type: EventTimerUpdate, RoomID: r.ID, TimeLeft: intp(r.RemainingSeconds), Turn: intp(r.TurnOwner)})
	r.Mu.Unlock()
	return true
}
