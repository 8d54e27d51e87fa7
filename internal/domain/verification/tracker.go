package verification

import (
	"context"
	"sync"
)

// Tracker holds the last known state of one user for long-lived callers
// such as a websocket session. It never refreshes on its own: call Refresh
// after any action that may change the sources, for example right after a
// bank account is added.
type Tracker struct {
	gate   *Gate
	userID string

	mu    sync.RWMutex
	state *State
}

// Tracker returns an empty tracker for userID. It stays loading until the
// first Refresh.
func (g *Gate) Tracker(userID string) *Tracker {
	return &Tracker{gate: g, userID: userID}
}

// Refresh reloads the sources and replaces the snapshot.
func (t *Tracker) Refresh(ctx context.Context) State {
	st := t.gate.State(ctx, t.userID)

	t.mu.Lock()
	t.state = &st
	t.mu.Unlock()
	return st
}

// Loading is true until the first Refresh completes.
func (t *Tracker) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state == nil
}

// State returns the last snapshot; ok is false while loading.
func (t *Tracker) State() (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state == nil {
		return State{}, false
	}
	return *t.state, true
}

// Check decides whether label may run now. It returns ErrStateLoading
// before the first Refresh, a *BlockedError when blocked, and nil when
// allowed.
func (t *Tracker) Check(label string, strict bool) error {
	st, ok := t.State()
	if !ok {
		return ErrStateLoading
	}
	if st.Blocks(strict) {
		return newBlockedError(label, st)
	}
	return nil
}

// Allow is Check reduced to a boolean. It is never true while loading.
func (t *Tracker) Allow(strict bool) bool {
	return t.Check("", strict) == nil
}
