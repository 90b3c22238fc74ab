// Package gate decides whether a protected route may be shown for the
// current session state, and tracks that decision as the state changes.
package gate

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/projectshelf/internal/client/session"
	"github.com/dmitrijs2005/projectshelf/internal/logging"
)

// DefaultRedirect is the login entry point.
const DefaultRedirect = "/login"

// Outcome is what a protected route should do.
type Outcome int

const (
	// Wait shows a neutral waiting indicator: no content, no redirect.
	Wait Outcome = iota
	// Redirect sends the user to the decision's Target.
	Redirect
	// Render shows the protected content.
	Render
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a session state.
type Decision struct {
	Outcome Outcome
	// Target is set for Redirect only.
	Target string
}

// Decide is the pure access decision. An empty redirectTo means DefaultRedirect.
// The requested destination is deliberately not carried to the target.
func Decide(st session.State, redirectTo string) Decision {
	if redirectTo == "" {
		redirectTo = DefaultRedirect
	}
	switch {
	case st.Loading:
		return Decision{Outcome: Wait}
	case st.Identity == nil:
		return Decision{Outcome: Redirect, Target: redirectTo}
	default:
		return Decision{Outcome: Render}
	}
}

// Status is the settled view of a gate.
type Status int

const (
	Checking Status = iota
	Denied
	Granted
)

func (s Status) String() string {
	switch s {
	case Checking:
		return "checking"
	case Denied:
		return "denied"
	case Granted:
		return "granted"
	default:
		return "unknown"
	}
}

// StateSource is anything that can report the current session state.
// *session.Store satisfies it.
type StateSource interface {
	State() session.State
}

// Gate tracks access for one protected boundary. It starts in Checking and
// settles on the first non-loading state; afterwards it moves between Granted
// and Denied as the identity comes and goes, and never returns to Checking.
type Gate struct {
	redirectTo string
	logger     logging.Logger

	mu     sync.Mutex
	status Status
}

func New(redirectTo string, logger logging.Logger) *Gate {
	if redirectTo == "" {
		redirectTo = DefaultRedirect
	}
	return &Gate{
		redirectTo: redirectTo,
		logger:     logger.With("module", "gate"),
	}
}

// RedirectTo returns the configured redirect target.
func (g *Gate) RedirectTo() string {
	return g.redirectTo
}

// Status returns the current status.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Evaluate decides for st and applies any status transition it implies.
// A loading state yields Wait without touching a settled status.
func (g *Gate) Evaluate(st session.State) Decision {
	d := Decide(st, g.redirectTo)

	next := Checking
	switch d.Outcome {
	case Render:
		next = Granted
	case Redirect:
		next = Denied
	}

	g.mu.Lock()
	prev := g.status
	if next != Checking {
		g.status = next
	}
	g.mu.Unlock()

	if next != Checking && next != prev {
		g.logger.Info(context.Background(), "access gate transition", "from", prev.String(), "to", next.String())
	}
	return d
}

// Observe is Evaluate without the result, for use with session.Store.Subscribe.
func (g *Gate) Observe(st session.State) {
	g.Evaluate(st)
}

// Handlers tells Guard what to do when access is not granted.
type Handlers struct {
	Wait     func(ctx context.Context) error
	Redirect func(ctx context.Context, target string) error
}

// Guard evaluates src and runs next only when the decision is Render.
func (g *Gate) Guard(ctx context.Context, src StateSource, h Handlers, next func(ctx context.Context) error) error {
	d := g.Evaluate(src.State())
	switch d.Outcome {
	case Wait:
		if h.Wait != nil {
			return h.Wait(ctx)
		}
		return nil
	case Redirect:
		if h.Redirect != nil {
			return h.Redirect(ctx, d.Target)
		}
		return nil
	default:
		return next(ctx)
	}
}
