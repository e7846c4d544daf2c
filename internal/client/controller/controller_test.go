package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/harvesthub/internal/client/api"
	"github.com/dmitrijs2005/harvesthub/internal/client/models"
	"github.com/dmitrijs2005/harvesthub/internal/client/notify"
	"github.com/dmitrijs2005/harvesthub/internal/client/render"
	"github.com/dmitrijs2005/harvesthub/internal/client/session"
	"github.com/dmitrijs2005/harvesthub/internal/client/storage"
	"github.com/dmitrijs2005/harvesthub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	Text     string
	Severity notify.Severity
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) Notify(message string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{message, severity})
}

func (r *recorder) all() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

func (r *recorder) last() note {
	n := r.all()
	if len(n) == 0 {
		return note{}
	}
	return n[len(n)-1]
}

type navigator struct {
	views []View
}

func (n *navigator) Navigate(v View) { n.views = append(n.views, v) }

type fixedEstimator struct{}

func (fixedEstimator) Quantity() string  { return "42kg" }
func (fixedEstimator) ShelfLife() string { return "3 days" }

// backend is a stub of the HarvestHub API.
type backend struct {
	t  *testing.T
	mu sync.Mutex

	calls    map[string]int
	food     any
	rawFood  string
	posted   map[string]string
	claimErr int
	claimKey []string
	status   map[string]int
	messages map[string]string
	user     map[string]any
}

func newBackend(t *testing.T) *backend {
	return &backend{
		t:     t,
		calls: map[string]int{},
		food: []map[string]any{
			{"id": 1, "description": "Apples", "location": "Riga", "quantity": "20kg", "shelf_life": "5 days", "poster_name": "Ann"},
		},
		status:   map[string]int{},
		messages: map[string]string{},
		user:     map[string]any{"id": 7, "name": "Sam", "email": "sam@example.org", "role": "supplier"},
	}
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// set mutates the stub under its lock.
func (b *backend) set(fn func(b *backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *backend) fail(key string, status int, message string) {
	b.set(func(b *backend) {
		b.status[key] = status
		b.messages[key] = message
	})
}

func (b *backend) postedForm() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.posted
}

func (b *backend) claimKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.claimKey...)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	b.calls[key]++

	if st, ok := b.status[key]; ok {
		reply(w, st, map[string]string{"message": b.messages[key]})
		return
	}

	switch key {
	case "POST /login", "POST /register":
		reply(w, http.StatusOK, map[string]any{"user": b.user, "token": "tok"})
	case "GET /profile":
		assert.Equal(b.t, "Bearer tok", r.Header.Get("Authorization"))
		reply(w, http.StatusOK, map[string]any{"id": 7, "name": "Samantha", "email": "sam@example.org", "role": "supplier"})
	case "GET /food":
		assert.Equal(b.t, "Bearer tok", r.Header.Get("Authorization"))
		if b.rawFood != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(b.rawFood))
			return
		}
		reply(w, http.StatusOK, map[string]any{"food": b.food})
	case "POST /food":
		if assert.NoError(b.t, r.ParseMultipartForm(1<<20)) {
			b.posted = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				b.posted[k] = v[0]
			}
		}
		reply(w, http.StatusCreated, map[string]string{"message": "Food posted"})
	case "POST /match":
		b.claimKey = append(b.claimKey, r.Header.Get(api.IdempotencyHeader))
		if b.claimErr > 0 {
			b.claimErr--
			reply(w, http.StatusConflict, map[string]string{"message": "Try again"})
			return
		}
		reply(w, http.StatusOK, map[string]string{"message": "Matched"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type fixture struct {
	c        *Controller
	be       *backend
	notes    *recorder
	nav      *navigator
	out      *bytes.Buffer
	sessions *session.Store

	delays []time.Duration
	sleeps []time.Duration
	// onSleep runs inside the payment delay.
	onSleep func()
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	f := &fixture{
		be:    newBackend(t),
		notes: &recorder{},
		nav:   &navigator{},
		out:   &bytes.Buffer{},
	}
	ts := httptest.NewServer(f.be)
	t.Cleanup(ts.Close)

	f.sessions = session.NewStore(storage.NewMemoryStore(), logging.Discard())
	f.c = New(Deps{
		API:       api.NewHTTPClient(ts.URL, 2*time.Second, logging.Discard()),
		Sessions:  f.sessions,
		Notifier:  f.notes,
		Navigator: f.nav,
		Estimator: fixedEstimator{},
		Out:       f.out,
	}, opts)

	oldAfter, oldSleep := afterFunc, sleep
	afterFunc = func(d time.Duration, fn func()) {
		f.delays = append(f.delays, d)
		fn()
	}
	sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		if f.onSleep != nil {
			f.onSleep()
		}
		return ctx.Err()
	}
	t.Cleanup(func() { afterFunc, sleep = oldAfter, oldSleep })

	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.c.Login(context.Background(), "sam@example.org", "pw"))
	f.c.Open(context.Background(), ViewDashboard)
}

var defaultOpts = Options{RedirectDelay: 800 * time.Millisecond, PaymentDelay: 1200 * time.Millisecond}

func TestOpen_DashboardWithoutSessionRedirects(t *testing.T) {
	f := newFixture(t, defaultOpts)

	f.c.Open(context.Background(), ViewDashboard)

	assert.Equal(t, []View{ViewLogin}, f.nav.views)
	assert.Zero(t, f.be.count("GET /food"))
	assert.Equal(t, Anonymous, f.c.State().Kind)
}

func TestOpen_PublicViewDoesNothing(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.c.Open(context.Background(), ViewLogin)
	assert.Empty(t, f.nav.views)
	assert.Empty(t, f.out.String())
}

func TestLogin_StoresSessionAndRedirects(t *testing.T) {
	f := newFixture(t, defaultOpts)

	require.NoError(t, f.c.Login(context.Background(), "sam@example.org", "pw"))

	sess, ok := f.sessions.GetSession(context.Background())
	require.True(t, ok)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, int64(7), sess.User.ID)
	assert.Equal(t, note{MsgLoginOK, notify.SeveritySuccess}, f.notes.last())
	assert.Equal(t, []time.Duration{800 * time.Millisecond}, f.delays)
	assert.Equal(t, []View{ViewDashboard}, f.nav.views)
	assert.Equal(t, NoListings, f.c.State().Kind)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    string
	}{
		{"server message", http.StatusUnauthorized, "Invalid credentials", "Invalid credentials"},
		{"no message", http.StatusInternalServerError, "", FallbackLogin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultOpts)
			f.be.fail("POST /login", tt.status, tt.message)

			require.Error(t, f.c.Login(context.Background(), "a", "b"))

			assert.Equal(t, note{tt.want, notify.SeverityError}, f.notes.last())
			_, ok := f.sessions.GetSession(context.Background())
			assert.False(t, ok)
			assert.Empty(t, f.nav.views)
			assert.Equal(t, Anonymous, f.c.State().Kind)
		})
	}
}

func TestLogin_NetworkError(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.c.API = api.NewHTTPClient("http://127.0.0.1:1", time.Second, logging.Discard())

	require.Error(t, f.c.Login(context.Background(), "a", "b"))
	assert.Equal(t, note{api.NetworkMessage, notify.SeverityError}, f.notes.last())
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t, defaultOpts)

	err := f.c.Register(context.Background(), api.RegisterRequest{Name: "Sam", Email: "sam@example.org", Password: "pw", Role: models.RoleSupplier})
	require.NoError(t, err)

	assert.Equal(t, note{MsgRegisterOK, notify.SeveritySuccess}, f.notes.last())
	assert.Equal(t, []View{ViewDashboard}, f.nav.views)
}

func TestRegister_FallbackMessage(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.be.fail("POST /register", http.StatusBadRequest, "")

	require.Error(t, f.c.Register(context.Background(), api.RegisterRequest{}))
	assert.Equal(t, note{FallbackRegister, notify.SeverityError}, f.notes.last())
}

func TestOpen_RendersListings(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)

	assert.Contains(t, f.out.String(), "#1 Apples | Location: Riga | Quantity: 20kg")
	assert.Equal(t, Listings, f.c.State().Kind)
	assert.Len(t, f.c.Listings().Listings, 1)
}

func TestOpen_EmptyAndMalformedListings(t *testing.T) {
	for name, food := range map[string]any{
		"empty array": []any{},
		"not array":   map[string]any{"id": 1},
		"missing":     nil,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, defaultOpts)
			f.be.set(func(b *backend) { b.food = food })
			f.login(t)

			assert.Contains(t, f.out.String(), render.EmptyText)
			assert.Equal(t, NoListings, f.c.State().Kind)
		})
	}
}

func TestOpen_RejectedFetchShowsEmpty(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.be.fail("GET /food", http.StatusUnauthorized, "")
	f.login(t)

	assert.Contains(t, f.out.String(), render.EmptyText)
	// Rendered as "no listings", so not reported as a failure either.
	assert.NoError(t, f.c.Refresh(context.Background()))
	assert.Equal(t, render.StatusLoaded, f.c.Listings().Status)
}

func TestOpen_NonObjectBodiesShowEmpty(t *testing.T) {
	for _, body := range []string{`[]`, `"none"`, `{"food":[1,2]}`} {
		t.Run(body, func(t *testing.T) {
			f := newFixture(t, defaultOpts)
			f.be.set(func(b *backend) { b.rawFood = body })
			f.login(t)

			v := f.c.Listings()
			assert.Equal(t, render.StatusLoaded, v.Status)
			assert.Empty(t, v.Listings)
			assert.Contains(t, f.out.String(), render.EmptyText)
			assert.NotContains(t, f.out.String(), render.FailedText)
		})
	}
}

func TestRefresh_NetworkFailureShowsFailedText(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	f.out.Reset()
	f.c.API = api.NewHTTPClient("http://127.0.0.1:1", time.Second, logging.Discard())

	require.Error(t, f.c.Refresh(context.Background()))

	assert.Equal(t, render.LoadingText+"\n"+render.FailedText+"\n", f.out.String())
	assert.Equal(t, NoListings, f.c.State().Kind)
}

func TestPostFood_RequiresSession(t *testing.T) {
	f := newFixture(t, defaultOpts)

	err := f.c.PostFood(context.Background(), &models.FoodForm{Description: "Bread", Location: "Here"})

	require.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, note{MsgLoginFirst, notify.SeverityError}, f.notes.last())
	assert.Zero(t, f.be.count("POST /food"))
}

func TestPostFood_Success(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	before := f.be.count("GET /food")

	form := &models.FoodForm{Description: "Bread", Location: "Market"}
	require.NoError(t, f.c.PostFood(context.Background(), form))

	assert.Equal(t, map[string]string{
		"description": "Bread",
		"location":    "Market",
		"quantity":    "42kg",
		"shelf_life":  "3 days",
	}, f.be.postedForm())
	assert.Equal(t, models.FoodForm{}, *form)
	assert.Equal(t, note{MsgPosted, notify.SeveritySuccess}, f.notes.last())
	assert.Equal(t, before+1, f.be.count("GET /food"))
	assert.Equal(t, Listings, f.c.State().Kind)
}

func TestPostFood_FailureKeepsForm(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	f.be.fail("POST /food", http.StatusBadRequest, "Photo required")
	before := f.be.count("GET /food")

	form := &models.FoodForm{Description: "Bread"}
	require.Error(t, f.c.PostFood(context.Background(), form))

	assert.Equal(t, "Bread", form.Description)
	assert.Equal(t, note{"Photo required", notify.SeverityError}, f.notes.last())
	assert.Equal(t, before, f.be.count("GET /food"))
	assert.Equal(t, Listings, f.c.State().Kind)
}

func TestClaim_SupplierPaysFirst(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	before := f.be.count("GET /food")

	f.onSleep = func() {
		// Nothing past the pending message may be shown during the delay.
		assert.Equal(t, note{MsgPaymentPending, notify.SeverityInfo}, f.notes.last())
		assert.NotContains(t, f.notes.all(), note{MsgPaymentOK, notify.SeveritySuccess})
	}
	require.NoError(t, f.c.Claim(context.Background(), "1"))

	notes := f.notes.all()
	require.GreaterOrEqual(t, len(notes), 2)
	assert.Equal(t, []note{
		{MsgPaymentPending, notify.SeverityInfo},
		{MsgPaymentOK, notify.SeveritySuccess},
	}, notes[len(notes)-2:])
	assert.Equal(t, []time.Duration{1200 * time.Millisecond}, f.sleeps)
	assert.Equal(t, before+1, f.be.count("GET /food"))
	assert.Zero(t, f.be.count("POST /match"))
	assert.Equal(t, Listings, f.c.State().Kind)
}

func TestClaim_OtherRoles(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.be.set(func(b *backend) { b.user["role"] = "ngo" })
	f.login(t)

	require.NoError(t, f.c.Claim(context.Background(), "1"))

	assert.Equal(t, note{MsgClaimed, notify.SeveritySuccess}, f.notes.last())
	assert.Empty(t, f.sleeps)
}

func TestClaim_RequiresSession(t *testing.T) {
	f := newFixture(t, defaultOpts)

	require.ErrorIs(t, f.c.Claim(context.Background(), "1"), ErrNoSession)
	assert.Equal(t, note{MsgLoginFirst, notify.SeverityError}, f.notes.last())
}

func TestClaim_UnknownListing(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)

	require.Error(t, f.c.Claim(context.Background(), "99"))
	assert.Equal(t, note{"Listing #99 not found", notify.SeverityError}, f.notes.last())
}

func TestClaim_InFlightRejected(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	require.NoError(t, f.c.apply(context.Background(), EventClaimStarted))

	err := f.c.Claim(context.Background(), "1")

	require.ErrorIs(t, err, ErrClaimInFlight)
	assert.Equal(t, note{MsgClaimBusy, notify.SeverityError}, f.notes.last())
	assert.Empty(t, f.sleeps)
}

func TestClaim_StaleCardsReload(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	// A second login resets the state while the old cards are still shown.
	require.NoError(t, f.c.Login(context.Background(), "sam@example.org", "pw"))
	require.Equal(t, NoListings, f.c.State().Kind)
	require.Len(t, f.c.Listings().Listings, 1)
	before := f.be.count("GET /food")

	err := f.c.Claim(context.Background(), "1")

	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.NotErrorIs(t, err, ErrClaimInFlight)
	assert.Equal(t, note{MsgClaimStale, notify.SeverityError}, f.notes.last())
	assert.Equal(t, before+1, f.be.count("GET /food"))
	assert.Equal(t, Listings, f.c.State().Kind)
	assert.Empty(t, f.sleeps)
}

func TestClaim_CancelledPayment(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.c.Claim(ctx, "1")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, note{MsgPaymentPending, notify.SeverityInfo}, f.notes.last())
	assert.Equal(t, Listings, f.c.State().Kind)
}

func TestClaim_RemoteReusesKeyOnRetry(t *testing.T) {
	opts := defaultOpts
	opts.RemoteClaims = true
	f := newFixture(t, opts)
	f.be.set(func(b *backend) {
		b.user["role"] = "ngo"
		b.claimErr = 1
	})
	f.login(t)

	require.Error(t, f.c.Claim(context.Background(), "1"))
	assert.Equal(t, note{"Try again", notify.SeverityError}, f.notes.last())

	require.NoError(t, f.c.Claim(context.Background(), "1"))
	assert.Equal(t, note{MsgClaimed, notify.SeveritySuccess}, f.notes.last())

	keys := f.be.claimKeys()
	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1])

	// A new claim after success gets a fresh key.
	require.NoError(t, f.c.Claim(context.Background(), "1"))
	keys = f.be.claimKeys()
	require.Len(t, keys, 3)
	assert.NotEqual(t, keys[1], keys[2])
}

func TestLogout(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)

	require.NoError(t, f.c.Logout(context.Background()))

	_, ok := f.sessions.GetSession(context.Background())
	assert.False(t, ok)
	assert.Equal(t, ViewLogin, f.nav.views[len(f.nav.views)-1])
	assert.Equal(t, Anonymous, f.c.State().Kind)
	assert.Empty(t, f.c.Listings().Listings)
}

func TestWhoAmI_RefreshesStoredUser(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)

	u, err := f.c.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Samantha", u.Name)

	sess, ok := f.sessions.GetSession(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Samantha", sess.User.Name)
	assert.Equal(t, "tok", sess.Token)
}

func TestWhoAmI_Failure(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	f.be.fail("GET /profile", http.StatusUnauthorized, "")

	_, err := f.c.WhoAmI(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, note{FallbackProfile, notify.SeverityError}, f.notes.last())
}

func TestFlipAndExport(t *testing.T) {
	f := newFixture(t, defaultOpts)
	f.login(t)
	f.out.Reset()

	require.NoError(t, f.c.Flip("1"))
	assert.Contains(t, f.out.String(), "#1 [back] Estimated shelf life: 5 days | Posted by: Ann")

	var html bytes.Buffer
	require.NoError(t, f.c.Export(&html))
	assert.Contains(t, html.String(), `data-id="1"`)
	assert.Contains(t, html.String(), "flipped")

	require.Error(t, f.c.Flip("2"))
	assert.Equal(t, note{"Listing #2 not found", notify.SeverityError}, f.notes.last())
}
