// Package cli provides the interactive HarvestHub command-line client.
//
// The client has three views (login, register and dashboard). Commands act
// on the current view the way form submissions and clicks would in a
// browser: the controller decides what happens, the App only reads input,
// tracks the current view and serialises commands with the delayed
// navigation that follows a login.
//
// Key features:
//   - Login / Register / Logout
//   - Post food listings and claim them
//   - List, refresh and flip listing cards, export them as HTML
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
