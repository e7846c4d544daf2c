// Package api is the typed gateway to the HarvestHub REST backend.
//
// # Overview
//
// Client is the transport-agnostic contract used by the controller;
// HTTPClient implements it over net/http:
//
//	POST /login      {email, password}               -> {user, token}
//	POST /register   {name, email, password, role}   -> {user, token}
//	GET  /profile    Bearer                          -> user
//	GET  /food       Bearer                          -> {food: [...]}
//	POST /food       Bearer, multipart form          -> created listing | {message}
//	POST /match      Bearer, {food_id}, Idempotency-Key -> {message}
//
// # Error Handling
//
// Every failure is one of:
//   - ErrNetwork (wrapped): no usable response: connection failure, timeout,
//     or a body that is not JSON;
//   - *APIError: the server answered with an error status (or, for login and
//     register, without a token). Message carries the server's "message"
//     field when it sent one. errors.Is(err, ErrUnauthorized) matches 401s.
//
// Message(err, fallback) turns any of these into the text shown to the user.
package api
