// Package controller drives a HarvestHub client view: it gates protected
// views on the stored session, runs the login, register, post, claim and
// logout actions, and keeps the rendered listings in step with the server by
// re-fetching the full list after every mutating action.
//
// The view's state is explicit (see State and Next). Handlers never return
// an unreported failure: every error path ends in a notification or in the
// listing container's failure text, and the state machine only advances on
// success.
package controller
