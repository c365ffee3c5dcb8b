// Package gate implements the private-collection challenge flow: an
// action on a locked private collection is parked while the user is asked
// for the access code, and runs exactly once after a successful unlock.
package gate

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/lcamargo/docchat/internal/backend"
	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/session"
	"go.uber.org/zap"
)

// State of the gate flow.
type State string

const (
	Idle        State = "IDLE"
	Challenging State = "CHALLENGING"
	Verifying   State = "VERIFYING"
)

var validTransitions = map[State][]State{
	Idle:        {Challenging},
	Challenging: {Verifying, Idle},
	Verifying:   {Challenging, Idle},
}

// Action is a gated operation on a collection.
type Action string

const (
	ActionEnter            Action = "enter"
	ActionDeleteCollection Action = "delete-collection"
	ActionDeleteDocument   Action = "delete-document"
)

// Pending records the one action parked behind the challenge.
type Pending struct {
	Collection *model.Collection
	Action     Action
	DocumentID string
}

// Unlocker is the slice of the backend client the gate consumes.
type Unlocker interface {
	Unlock(ctx context.Context, id, code string) (*model.UnlockResult, error)
}

// Runner executes a previously parked action after a successful unlock.
type Runner interface {
	Run(ctx context.Context, p Pending) error
}

// Messages shown in the challenge dialog on unlock failure.
const (
	ErrIncorrectCode = "Incorrect code. Try again."
	ErrVerifyFailed  = "Could not verify code. Try again."
)

// Gate is the challenge state machine. Unlock tokens and the unlocked set
// live in the injected session-scoped storage, shared with the store.
type Gate struct {
	mu      sync.RWMutex
	state   State
	pending *Pending
	errMsg  string

	api     Unlocker
	runner  Runner
	session session.Storage
	bus     *bus.Bus
	logger  *zap.Logger
}

// New creates a gate in the Idle state.
func New(api Unlocker, runner Runner, sess session.Storage, b *bus.Bus, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		state:   Idle,
		api:     api,
		runner:  runner,
		session: sess,
		bus:     b,
		logger:  logger,
	}
}

// Request asks for an action on a collection. Public or already-unlocked
// collections bypass the gate and the action runs immediately; otherwise
// the gate moves to Challenging and parks the action.
func (g *Gate) Request(ctx context.Context, c *model.Collection, action Action, documentID string) error {
	if c.IsPublic || g.isUnlocked(c.ID) {
		return g.runner.Run(ctx, Pending{Collection: c, Action: action, DocumentID: documentID})
	}

	g.mu.Lock()
	if err := g.transitionLocked(Challenging); err != nil {
		g.mu.Unlock()
		return err
	}
	g.pending = &Pending{Collection: c, Action: action, DocumentID: documentID}
	g.errMsg = ""
	g.mu.Unlock()

	g.bus.Emit(bus.KindGateChanged, Challenging)
	return nil
}

// Submit verifies an access code against the pending collection. A call
// while a verification is already in flight is a no-op, preventing
// duplicate concurrent unlock calls. On success the parked action runs
// exactly once and all pending state clears; on failure the gate stays
// open with an error message set.
func (g *Gate) Submit(ctx context.Context, code string) error {
	g.mu.Lock()
	if g.state != Challenging || g.pending == nil {
		g.mu.Unlock()
		return nil
	}
	if err := g.transitionLocked(Verifying); err != nil {
		g.mu.Unlock()
		return err
	}
	p := *g.pending
	g.errMsg = ""
	g.mu.Unlock()
	g.bus.Emit(bus.KindGateChanged, Verifying)

	res, err := g.api.Unlock(ctx, p.Collection.ID, code)

	g.mu.Lock()
	if g.state != Verifying {
		// Dialog was dismissed while the call was in flight; the pending
		// state is gone and the result is dropped.
		g.mu.Unlock()
		return nil
	}
	if err != nil {
		if backend.IsUnauthorized(err) {
			g.errMsg = ErrIncorrectCode
		} else {
			g.errMsg = ErrVerifyFailed
		}
		_ = g.transitionLocked(Challenging)
		g.mu.Unlock()
		g.bus.Emit(bus.KindGateChanged, Challenging)
		g.logger.Warn("unlock failed", zap.String("collection", p.Collection.ID), zap.Error(err))
		return nil
	}

	g.session.Set(session.TokenKey(p.Collection.ID), res.AccessToken)
	g.session.Set(session.UnlockedKey(p.Collection.ID), "1")
	_ = g.transitionLocked(Idle)
	g.pending = nil
	g.errMsg = ""
	g.mu.Unlock()
	g.bus.Emit(bus.KindGateChanged, Idle)

	g.logger.Info("collection unlocked", zap.String("collection", p.Collection.ID))
	return g.runner.Run(ctx, p)
}

// Dismiss discards all pending state unconditionally, including while a
// verification is in flight.
func (g *Gate) Dismiss() {
	g.mu.Lock()
	if g.state == Idle {
		g.mu.Unlock()
		return
	}
	_ = g.transitionLocked(Idle)
	g.pending = nil
	g.errMsg = ""
	g.mu.Unlock()
	g.bus.Emit(bus.KindGateChanged, Idle)
}

// ClearError drops the error message, keeping the challenge open. The
// dialog calls this when the user edits the code.
func (g *Gate) ClearError() {
	g.mu.Lock()
	g.errMsg = ""
	g.mu.Unlock()
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// PendingCollection returns the collection awaiting a code, or nil.
func (g *Gate) PendingCollection() *model.Collection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.pending == nil {
		return nil
	}
	return g.pending.Collection
}

// ErrorMessage returns the message to show in the challenge dialog.
func (g *Gate) ErrorMessage() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.errMsg
}

func (g *Gate) isUnlocked(id string) bool {
	_, ok := g.session.Get(session.UnlockedKey(id))
	return ok
}

func (g *Gate) transitionLocked(to State) error {
	if !slices.Contains(validTransitions[g.state], to) {
		return fmt.Errorf("invalid gate transition from %s to %s", g.state, to)
	}
	g.state = to
	return nil
}
