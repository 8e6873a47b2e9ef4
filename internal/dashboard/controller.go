package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"timesheets.service/internal/contract"
)

var (
	ErrActionInFlight    = errors.New("another clock action is in progress")
	ErrActionUnavailable = errors.New("action is not available right now")
)

const (
	refreshFailed  = "Failed to load timesheet dashboard."
	clockInFailed  = "Clock in failed."
	clockOutFailed = "Clock out failed."
)

// API is the subset of the timesheet backend the controller drives.
type API interface {
	Dashboard(ctx context.Context) (contract.Dashboard, error)
	ClockIn(ctx context.Context) error
	ClockOut(ctx context.Context) error
}

// Controller owns the State of one dashboard screen. The server snapshot is
// only ever replaced by a fresh Dashboard call; failed actions keep the last
// confirmed snapshot and surface their reason in the banner.
type Controller struct {
	api API
	loc *time.Location

	mu         sync.Mutex
	state      State
	refreshSeq uint64
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLocation sets the zone timestamps are rendered in.
func WithLocation(loc *time.Location) ControllerOption {
	return func(c *Controller) { c.loc = loc }
}

func NewController(api API, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:   api,
		loc:   time.Local,
		state: State{Actions: make(map[Action]ActionState)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// View renders the current state.
func (c *Controller) View() View {
	return Render(c.State(), c.loc)
}

// SetSearch updates the record filter. It never touches the snapshot.
func (c *Controller) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Search = search
}

// Refresh fetches a snapshot and reconciles it into the state. A successful
// refresh clears the banner. When refreshes overlap, only the most recently
// started one is applied.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshSeq++
	seq := c.refreshSeq
	c.state.set(ActionRefresh, InFlight, "")
	c.mu.Unlock()

	snap, err := c.api.Dashboard(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.refreshSeq {
		return err
	}
	if err != nil {
		reason := reasonFor(err, refreshFailed)
		c.state.set(ActionRefresh, Failed, reason)
		c.state.Banner = reason
		return err
	}
	c.state = Reconcile(c.state, snap)
	c.state.Banner = ""
	c.state.set(ActionRefresh, Succeeded, "")
	return nil
}

// ClockIn clocks the current user in and reloads the dashboard.
func (c *Controller) ClockIn(ctx context.Context) error {
	return c.mutate(ctx, ActionClockIn, c.api.ClockIn, clockInFailed)
}

// ClockOut clocks the current user out and reloads the dashboard.
func (c *Controller) ClockOut(ctx context.Context) error {
	return c.mutate(ctx, ActionClockOut, c.api.ClockOut, clockOutFailed)
}

func (c *Controller) mutate(ctx context.Context, action Action, call func(context.Context) error, fallback string) error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		return ErrActionInFlight
	}
	if !c.enabled(action) {
		c.mu.Unlock()
		return ErrActionUnavailable
	}
	c.state.set(action, InFlight, "")
	c.state.Banner = ""
	c.mu.Unlock()

	if err := call(ctx); err != nil {
		reason := reasonFor(err, fallback)
		c.mu.Lock()
		c.state.set(action, Failed, reason)
		c.state.Banner = reason
		c.mu.Unlock()
		return err
	}

	// The action stays in flight until the fresh snapshot lands so the
	// buttons never reflect the pre-action state.
	refreshErr := c.Refresh(ctx)

	c.mu.Lock()
	c.state.set(action, Succeeded, "")
	c.mu.Unlock()
	return refreshErr
}

func (c *Controller) enabled(action Action) bool {
	v := Render(c.state, c.loc)
	switch action {
	case ActionClockIn:
		return v.ClockInEnabled
	case ActionClockOut:
		return v.ClockOutEnabled
	}
	return false
}

func reasonFor(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
