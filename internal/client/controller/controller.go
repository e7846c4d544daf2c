package controller

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/harvesthub/internal/client/api"
	"github.com/dmitrijs2005/harvesthub/internal/client/models"
	"github.com/dmitrijs2005/harvesthub/internal/client/notify"
	"github.com/dmitrijs2005/harvesthub/internal/client/render"
	"github.com/dmitrijs2005/harvesthub/internal/client/session"
	"github.com/dmitrijs2005/harvesthub/internal/logging"
	"github.com/patrickmn/go-cache"
)

// View names a page of the client.
type View string

const (
	ViewLogin     View = "login"
	ViewRegister  View = "register"
	ViewDashboard View = "dashboard"
)

// Protected reports whether the view requires a session.
func (v View) Protected() bool {
	return v == ViewDashboard
}

// Navigator switches the visible view.
type Navigator interface {
	Navigate(v View)
}

// SessionStore is the session capability the controller needs.
type SessionStore interface {
	SetSession(ctx context.Context, user models.User, token string) error
	GetSession(ctx context.Context) (session.Session, bool)
	ClearSession(ctx context.Context) error
}

// Estimator fills in the quantity and shelf life of a new listing.
type Estimator interface {
	Quantity() string
	ShelfLife() string
}

// ErrNoSession is returned by actions that need a logged-in user.
var ErrNoSession = errors.New("no active session")

// Options are the timing and behaviour knobs.
type Options struct {
	RedirectDelay time.Duration
	PaymentDelay  time.Duration
	// RemoteClaims sends claims to the server instead of only announcing them.
	RemoteClaims bool
}

// Deps are the collaborators of a Controller.
type Deps struct {
	API       api.Client
	Sessions  SessionStore
	Notifier  notify.Notifier
	Navigator Navigator
	Estimator Estimator
	// Out receives the rendered listing container.
	Out io.Writer
	Log logging.Logger
}

// Test seams.
var (
	afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	sleep     = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	now = time.Now
)

// Controller is safe for concurrent use, though actions are meant to be
// issued one at a time, as a user would.
type Controller struct {
	Deps
	opts Options

	flips *render.Flips
	// claimKeys maps a listing to the idempotency key of its pending claim,
	// so a retry after a failure is recognised by the server as the same claim.
	claimKeys *cache.Cache

	mu    sync.Mutex
	state State
	view  render.View
}

// claimKeyTTL bounds how long a failed claim's key is reused.
const claimKeyTTL = 30 * time.Minute

func New(d Deps, opts Options) *Controller {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	d.Log = d.Log.With("component", "controller")

	return &Controller{
		Deps:      d,
		opts:      opts,
		flips:     render.NewFlips(),
		claimKeys: cache.New(claimKeyTTL, 2*claimKeyTTL),
		state:     Initial(false),
		view:      render.View{Status: render.StatusLoaded},
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Listings returns the current listing container contents.
func (c *Controller) Listings() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view
	v.Listings = append([]models.FoodListing(nil), c.view.Listings...)
	return v
}

// apply moves the state machine; invalid events leave the state unchanged.
func (c *Controller) apply(ctx context.Context, e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Next(c.state, e)
	if err != nil {
		c.Log.Debug(ctx, "transition rejected", "state", c.state.String(), "event", e.String())
		return err
	}
	if next != c.state {
		c.Log.Debug(ctx, "transition", "from", c.state.String(), "to", next.String(), "event", e.String())
	}
	c.state = next
	return nil
}

// requireSession returns the stored session, or notifies the user and
// returns ErrNoSession. When the view believes it is anonymous but a
// session exists (e.g. written by another run), the state catches up.
func (c *Controller) requireSession(ctx context.Context) (session.Session, error) {
	sess, ok := c.Sessions.GetSession(ctx)
	if !ok {
		_ = c.apply(ctx, EventSessionMissing)
		notify.Error(c.Notifier, MsgLoginFirst)
		return session.Session{}, ErrNoSession
	}
	if !c.State().Authenticated() {
		_ = c.apply(ctx, EventSessionFound)
	}
	return sess, nil
}

// Open runs the page-load logic of v. On a protected view without a session
// it redirects to the login view and does nothing else.
func (c *Controller) Open(ctx context.Context, v View) {
	if !v.Protected() {
		return
	}

	sess, ok := c.Sessions.GetSession(ctx)
	if !ok {
		_ = c.apply(ctx, EventSessionMissing)
		c.Navigator.Navigate(ViewLogin)
		return
	}
	_ = c.apply(ctx, EventSessionFound)

	if sess.Expired(now()) {
		c.Log.Warn(ctx, "stored token has expired; the server will reject it", "user_id", sess.User.ID)
	}

	c.loadListings(ctx, sess.Token)
}

// Refresh re-fetches the listings.
func (c *Controller) Refresh(ctx context.Context) error {
	sess, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	return c.loadListings(ctx, sess.Token)
}

// loadListings replaces the container with the server's current list.
// Failures are shown in the container itself.
func (c *Controller) loadListings(ctx context.Context, token string) error {
	c.setView(render.View{Status: render.StatusLoading})
	c.draw()

	listings, err := c.API.ListFood(ctx, token)
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		// A rejected fetch reads as an empty list.
		c.Log.Warn(ctx, "load listings rejected", "status", apiErr.Status, "error", err)
		listings = nil
	case err != nil:
		c.Log.Warn(ctx, "load listings", "error", err)
		_ = c.apply(ctx, EventListingsFailed)
		c.setView(render.View{Status: render.StatusFailed})
		c.draw()
		return err
	}

	if len(listings) == 0 {
		_ = c.apply(ctx, EventListingsEmpty)
	} else {
		_ = c.apply(ctx, EventListingsLoaded)
	}
	c.Log.Info(ctx, "listings loaded", "count", len(listings))
	c.setView(render.View{Status: render.StatusLoaded, Listings: listings})
	c.draw()
	return nil
}

func (c *Controller) setView(v render.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
}

func (c *Controller) draw() {
	if err := render.Text(c.Out, c.Listings(), c.flips); err != nil {
		c.Log.Error(context.Background(), "render listings", "error", err)
	}
}

// Show re-draws the current container without fetching.
func (c *Controller) Show() {
	c.draw()
}

// Export writes the current container as HTML.
func (c *Controller) Export(w io.Writer) error {
	return render.Container(w, c.Listings(), c.flips)
}

// Flip toggles the face of a rendered card and re-draws.
func (c *Controller) Flip(key string) error {
	if _, ok := c.findListing(key); !ok {
		notify.Error(c.Notifier, "Listing #"+key+" not found")
		return errListingNotFound
	}
	c.flips.Toggle(key)
	c.draw()
	return nil
}

var errListingNotFound = errors.New("listing not found")

func (c *Controller) findListing(key string) (models.FoodListing, bool) {
	for _, f := range c.Listings().Listings {
		if f.Key() == key {
			return f, true
		}
	}
	return models.FoodListing{}, false
}
