package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProfileSource loads profile facts. It returns nil, nil when the user has
// no profile.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*ProfileFacts, error)
}

// BankAccountSource counts a user's active bank accounts.
type BankAccountSource interface {
	CountActiveBankAccounts(ctx context.Context, userID string) (int, error)
}

// KYCSource loads the latest identity verification record. It returns nil,
// nil when the user never started verification.
type KYCSource interface {
	GetVerificationRecord(ctx context.Context, userID string) (*KYCFacts, error)
}

// Gate derives verification state and guards actions with it.
type Gate struct {
	profiles ProfileSource
	banks    BankAccountSource
	kyc      KYCSource
	timeout  time.Duration
	log      *zap.Logger
}

// NewGate creates a gate. timeout bounds each source fetch; zero disables it.
func NewGate(profiles ProfileSource, banks BankAccountSource, kyc KYCSource, timeout time.Duration, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		profiles: profiles,
		banks:    banks,
		kyc:      kyc,
		timeout:  timeout,
		log:      log.Named("verification"),
	}
}

// Facts loads the three sources concurrently. Errors are carried in the
// result; it never fails.
func (g *Gate) Facts(ctx context.Context, userID string) Facts {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var (
		f  Facts
		wg sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		f.ProfileErr = safely(func() error {
			p, err := g.profiles.GetProfile(ctx, userID)
			f.Profile = p
			return err
		})
	}()
	go func() {
		defer wg.Done()
		f.BankErr = safely(func() error {
			n, err := g.banks.CountActiveBankAccounts(ctx, userID)
			f.BankAccounts = n
			return err
		})
	}()
	go func() {
		defer wg.Done()
		f.KYCErr = safely(func() error {
			k, err := g.kyc.GetVerificationRecord(ctx, userID)
			f.KYC = k
			return err
		})
	}()
	wg.Wait()

	if f.FetchFailed() {
		g.log.Warn("verification sources failed to load",
			zap.String("user_id", userID),
			zap.NamedError("profile_error", f.ProfileErr),
			zap.NamedError("bank_error", f.BankErr),
			zap.NamedError("kyc_error", f.KYCErr),
		)
	}
	return f
}

// State fetches fresh facts and derives the state. Every call recomputes;
// nothing is cached.
func (g *Gate) State(ctx context.Context, userID string) State {
	return Derive(g.Facts(ctx, userID))
}

func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// Action is an operation that requires verification.
type Action func(ctx context.Context) error

// GuardOptions tune a guarded action.
type GuardOptions struct {
	// Strict also blocks users whose verification is under review.
	Strict bool
	// OnVerified runs when the gate lets the action through, before the
	// action itself.
	OnVerified func(State)
	// OnBlocked runs when the action is intercepted.
	OnBlocked func(*BlockedError)
}

// GuardedAction runs the wrapped action if the user may perform it.
type GuardedAction func(ctx context.Context) error

// Guard wraps action so that each invocation re-checks the user's state.
// A blocked invocation returns a *BlockedError and does not run action.
func (g *Gate) Guard(userID, label string, action Action, opts GuardOptions) GuardedAction {
	return func(ctx context.Context) error {
		st := g.State(ctx, userID)
		if st.Blocks(opts.Strict) {
			blocked := newBlockedError(label, st)
			g.log.Info("action blocked",
				zap.String("user_id", userID),
				zap.String("action", label),
				zap.String("status", string(st.Status)),
			)
			if opts.OnBlocked != nil {
				opts.OnBlocked(blocked)
			}
			return blocked
		}

		if opts.OnVerified != nil {
			opts.OnVerified(st)
		}
		return action(ctx)
	}
}
