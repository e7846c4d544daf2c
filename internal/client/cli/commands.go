package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/harvesthub/internal/client/api"
	"github.com/dmitrijs2005/harvesthub/internal/client/controller"
	"github.com/dmitrijs2005/harvesthub/internal/client/models"
	"github.com/dmitrijs2005/harvesthub/internal/filex"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readPasswordString reads a password and wipes the raw bytes.
func (a *App) readPasswordString() (string, error) {
	pw, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer clear(pw)
	return string(pw), nil
}

// Login prompts for credentials and submits the login form.
func (a *App) Login(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setView(controller.ViewLogin)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPasswordString()
	if err != nil {
		return err
	}

	if err := a.ctrl.Login(ctx, email, password); err != nil {
		return err
	}
	a.setEmail(email)
	return nil
}

// Register prompts for the registration form fields and submits them.
func (a *App) Register(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setView(controller.ViewRegister)

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPasswordString()
	if err != nil {
		return err
	}

	roles := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		roles[i] = string(r)
	}
	rawRole, err := getSimpleText(a.reader, "Enter role ("+strings.Join(roles, ", ")+")", a.out)
	if err != nil {
		return err
	}
	role, err := models.ParseRole(rawRole)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	err = a.ctrl.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password, Role: role})
	if err != nil {
		return err
	}
	a.setEmail(email)
	return nil
}

// Post fills in the food form and submits it. Values from a failed
// attempt are offered as defaults.
func (a *App) Post(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f := &a.form
	if !a.isLoggedIn() {
		// Let the controller decide; it reports a missing session.
		return a.ctrl.PostFood(ctx, f)
	}

	var err error
	if f.Description, err = GetWithDefault(a.reader, "Enter description", f.Description, a.out); err != nil {
		return err
	}
	if f.Location, err = GetWithDefault(a.reader, "Enter location", f.Location, a.out); err != nil {
		return err
	}
	if f.PhotoPath, err = GetWithDefault(a.reader, "Enter photo path (empty for none)", f.PhotoPath, a.out); err != nil {
		return err
	}

	return a.ctrl.PostFood(ctx, f)
}

// List re-draws the listings without fetching.
func (a *App) List(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.isLoggedIn() {
		printlnFn(controller.MsgLoginFirst)
		return controller.ErrNoSession
	}
	a.ctrl.Show()
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.Refresh(ctx)
}

func (a *App) Flip(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.Flip(id)
}

func (a *App) Claim(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.Claim(ctx, id)
}

// Export writes the listing container to path as HTML.
func (a *App) Export(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := filex.WriteAtomic(path, a.ctrl.Export); err != nil {
		a.log.Error(ctx, "export listings", "path", path, "error", err)
		printlnFn("Export failed:", err.Error())
		return err
	}
	printlnFn("Listings written to", path)
	return nil
}

// WhoAmI reloads the profile from the server and prints it.
func (a *App) WhoAmI(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, err := a.ctrl.WhoAmI(ctx)
	if err != nil {
		return err
	}
	a.setEmail(u.Email)
	printlnFn(formatUser(u))
	return nil
}

func formatUser(u models.User) string {
	return fmt.Sprintf("#%d %s <%s> role=%s", u.ID, u.Name, u.Email, u.Role)
}

func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ctrl.Logout(ctx); err != nil {
		return err
	}
	a.setEmail("")
	a.form = models.FoodForm{}
	return nil
}

