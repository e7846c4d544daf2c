package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/harvesthub/internal/client/api"
	"github.com/dmitrijs2005/harvesthub/internal/client/models"
	"github.com/dmitrijs2005/harvesthub/internal/client/notify"
	"github.com/dmitrijs2005/harvesthub/internal/client/render"
	"github.com/google/uuid"
)

// User-facing texts.
const (
	MsgLoginOK        = "Login successful!"
	MsgRegisterOK     = "Registration successful!"
	MsgLoginFirst     = "Please login first"
	MsgPosted         = "Food posted!"
	MsgPaymentPending = "Processing payment (simulated)..."
	MsgPaymentOK      = "Payment successful! Food claimed."
	MsgClaimed        = "Food claimed!"
	MsgClaimBusy      = "A claim is already in progress"
	MsgClaimStale     = "Listings are out of date, reloading. Try again"
	MsgLoggedOut      = "Logged out"

	FallbackLogin    = "Login failed"
	FallbackRegister = "Registration failed"
	FallbackPost     = "Failed to post food"
	FallbackClaim    = "Failed to claim food"
	FallbackProfile  = "Failed to load profile"
)

// ErrClaimInFlight is returned when a claim is issued while another one runs.
var ErrClaimInFlight = errors.New("claim already in flight")

// Login authenticates and, on success, stores the session and schedules
// the switch to the dashboard.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	res, err := c.API.Login(ctx, email, password)
	if err != nil {
		c.Log.Info(ctx, "login failed", "email", email, "error", err)
		notify.Error(c.Notifier, api.Message(err, FallbackLogin))
		return err
	}
	return c.startSession(ctx, res, MsgLoginOK)
}

// Register creates an account and logs it in.
func (c *Controller) Register(ctx context.Context, req api.RegisterRequest) error {
	res, err := c.API.Register(ctx, req)
	if err != nil {
		c.Log.Info(ctx, "registration failed", "email", req.Email, "error", err)
		notify.Error(c.Notifier, api.Message(err, FallbackRegister))
		return err
	}
	return c.startSession(ctx, res, MsgRegisterOK)
}

func (c *Controller) startSession(ctx context.Context, res api.AuthResult, msg string) error {
	if err := c.Sessions.SetSession(ctx, res.User, res.Token); err != nil {
		c.Log.Error(ctx, "store session", "error", err)
		notify.Error(c.Notifier, "Could not save session")
		return err
	}
	_ = c.apply(ctx, EventLoginSucceeded)
	c.Log.Info(ctx, "session started", "user_id", res.User.ID, "role", res.User.Role)

	notify.Success(c.Notifier, msg)
	afterFunc(c.opts.RedirectDelay, func() {
		c.Navigator.Navigate(ViewDashboard)
	})
	return nil
}

// PostFood submits form with generated estimates. On success the form is
// reset and the listings re-fetched.
func (c *Controller) PostFood(ctx context.Context, form *models.FoodForm) error {
	sess, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	if err := c.apply(ctx, EventPostStarted); err != nil {
		return err
	}

	form.Quantity = c.Estimator.Quantity()
	form.ShelfLife = c.Estimator.ShelfLife()

	res, err := c.API.PostFood(ctx, sess.Token, *form)
	_ = c.apply(ctx, EventPostFinished)
	if err != nil {
		c.Log.Info(ctx, "post food failed", "error", err)
		notify.Error(c.Notifier, api.Message(err, FallbackPost))
		return err
	}
	if res.Listing != nil {
		c.Log.Info(ctx, "food posted", "food_id", res.Listing.ID)
	}

	notify.Success(c.Notifier, MsgPosted)
	*form = models.FoodForm{}
	c.loadListings(ctx, sess.Token)
	return nil
}

// Claim claims the listing with the given key. Suppliers go through the
// simulated payment first. The listings are re-fetched whatever the outcome.
func (c *Controller) Claim(ctx context.Context, key string) error {
	sess, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	if _, ok := c.findListing(key); !ok {
		notify.Error(c.Notifier, "Listing #"+key+" not found")
		return errListingNotFound
	}
	if err := c.apply(ctx, EventClaimStarted); err != nil {
		if k := c.State().Kind; k == Claiming || k == Posting {
			notify.Error(c.Notifier, MsgClaimBusy)
			return fmt.Errorf("%w: %w", ErrClaimInFlight, err)
		}
		// The cards on screen predate the current state (e.g. a fresh
		// login before the dashboard re-fetch): reload instead.
		notify.Error(c.Notifier, MsgClaimStale)
		c.loadListings(ctx, sess.Token)
		return err
	}

	err = c.claim(ctx, sess.User, sess.Token, key)
	_ = c.apply(ctx, EventClaimFinished)
	if ctx.Err() == nil {
		c.loadListings(ctx, sess.Token)
	}
	return err
}

func (c *Controller) claim(ctx context.Context, user models.User, token, key string) error {
	if user.IsSupplier() {
		notify.Info(c.Notifier, MsgPaymentPending)
		if err := sleep(ctx, c.opts.PaymentDelay); err != nil {
			return err
		}
	}

	if c.opts.RemoteClaims {
		if err := c.submitClaim(ctx, token, key); err != nil {
			notify.Error(c.Notifier, api.Message(err, FallbackClaim))
			return err
		}
	}

	if user.IsSupplier() {
		notify.Success(c.Notifier, MsgPaymentOK)
	} else {
		notify.Success(c.Notifier, MsgClaimed)
	}
	c.Log.Info(ctx, "food claimed", "food", key, "remote", c.opts.RemoteClaims)
	return nil
}

// submitClaim sends the claim under the listing's idempotency key. The key
// survives failures so a retry is the same claim to the server.
func (c *Controller) submitClaim(ctx context.Context, token, key string) error {
	id, err := models.ParseID(key)
	if err != nil {
		return err
	}

	idemKey := uuid.NewString()
	if v, ok := c.claimKeys.Get(key); ok {
		idemKey = v.(string)
	} else {
		c.claimKeys.SetDefault(key, idemKey)
	}

	msg, err := c.API.ClaimFood(ctx, token, id, idemKey)
	if err != nil {
		c.Log.Warn(ctx, "claim rejected", "food_id", id, "idempotency_key", idemKey, "error", err)
		return err
	}
	c.claimKeys.Delete(key)
	c.Log.Debug(ctx, "claim accepted", "food_id", id, "message", msg)
	return nil
}

// Logout forgets the session and returns to the login view.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.Sessions.ClearSession(ctx); err != nil {
		c.Log.Error(ctx, "clear session", "error", err)
		notify.Error(c.Notifier, "Could not clear session")
		return err
	}
	_ = c.apply(ctx, EventLogout)
	c.setView(render.View{Status: render.StatusLoaded})
	c.Navigator.Navigate(ViewLogin)
	return nil
}

// WhoAmI reloads the user record from the server and stores it.
func (c *Controller) WhoAmI(ctx context.Context) (models.User, error) {
	sess, err := c.requireSession(ctx)
	if err != nil {
		return models.User{}, err
	}

	user, err := c.API.Profile(ctx, sess.Token)
	if err != nil {
		c.Log.Info(ctx, "profile failed", "error", err)
		if errors.Is(err, api.ErrUnauthorized) {
			c.Log.Warn(ctx, "token rejected by server", "user_id", sess.User.ID)
		}
		notify.Error(c.Notifier, api.Message(err, FallbackProfile))
		return sess.User, err
	}

	if err := c.Sessions.SetSession(ctx, user, sess.Token); err != nil {
		c.Log.Error(ctx, "store refreshed user", "error", err)
	}
	return user, nil
}
