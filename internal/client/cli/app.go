package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/harvesthub/internal/client/api"
	"github.com/dmitrijs2005/harvesthub/internal/client/controller"
	"github.com/dmitrijs2005/harvesthub/internal/client/models"
	"github.com/dmitrijs2005/harvesthub/internal/logging"
)

// Controller is the page logic the App drives.
type Controller interface {
	Open(ctx context.Context, v controller.View)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req api.RegisterRequest) error
	PostFood(ctx context.Context, form *models.FoodForm) error
	Claim(ctx context.Context, key string) error
	Flip(key string) error
	Refresh(ctx context.Context) error
	Show()
	Export(w io.Writer) error
	WhoAmI(ctx context.Context) (models.User, error)
	Logout(ctx context.Context) error
	State() controller.State
}

// goFn starts asynchronous navigation; tests run it inline.
var goFn = func(f func()) { go f() }

// App is the REPL front end. It implements controller.Navigator.
type App struct {
	ctrl   Controller
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger

	// mu serialises commands with delayed navigation.
	mu sync.Mutex

	viewMu sync.Mutex
	view   controller.View
	email  string
	// ctx is the context of Run, used for navigation that fires later.
	ctx context.Context

	// form survives a failed post so the user can correct and resubmit.
	form models.FoodForm
}

// NewApp reads commands from in and writes prompts to out. The controller is
// attached with Bind, since it needs the App as its navigator.
func NewApp(in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Discard()
	}
	return &App{
		reader: bufio.NewReader(in),
		out:    out,
		log:    log.With("component", "cli"),
		ctx:    context.Background(),
		view:   controller.ViewLogin,
	}
}

// Bind attaches the controller.
func (a *App) Bind(c Controller) {
	a.ctrl = c
}

// Run opens the dashboard (falling back to login without a session) and
// serves commands until the input ends or the user exits.
func (a *App) Run(ctx context.Context) {
	a.viewMu.Lock()
	a.ctx = ctx
	a.viewMu.Unlock()

	printlnFn("Welcome to HarvestHub CLI (type 'help' for commands)")
	a.enter(ctx, controller.ViewDashboard)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Navigate switches the current view. Protected views are opened
// asynchronously because navigation may be requested from inside a command.
func (a *App) Navigate(v controller.View) {
	a.setView(v)
	a.log.Debug(a.baseContext(), "navigate", "view", string(v))
	printlnFn(fmt.Sprintf("-> %s", v))

	if v.Protected() {
		goFn(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.currentView() != v {
				return
			}
			a.ctrl.Open(a.baseContext(), v)
		})
	}
}

// enter shows v and runs its page-load logic synchronously.
func (a *App) enter(ctx context.Context, v controller.View) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setView(v)
	a.ctrl.Open(ctx, v)
}

func (a *App) baseContext() context.Context {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return a.ctx
}

func (a *App) setView(v controller.View) {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	a.view = v
}

func (a *App) currentView() controller.View {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return a.view
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.State().Authenticated()
}

func (a *App) getStatus() string {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	if a.email != "" {
		return fmt.Sprintf("(%s %s)", a.view, a.email)
	}
	return fmt.Sprintf("(%s)", a.view)
}

func (a *App) setEmail(email string) {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	a.email = email
}
