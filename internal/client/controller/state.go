package controller

import (
	"errors"
	"fmt"
)

// Kind enumerates the states of a client view.
type Kind int

const (
	// Anonymous: no session. Protected views redirect to login from here.
	Anonymous Kind = iota
	// NoListings: authenticated, nothing on screen yet (or the last fetch
	// came back empty or failed).
	NoListings
	// Listings: authenticated with at least one listing rendered.
	Listings
	// Posting: a food post is in flight.
	Posting
	// Claiming: a claim is in flight.
	Claiming
)

func (k Kind) String() string {
	switch k {
	case Anonymous:
		return "anonymous"
	case NoListings:
		return "authenticated-no-listings"
	case Listings:
		return "authenticated-listings"
	case Posting:
		return "posting"
	case Claiming:
		return "claiming"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is the current Kind plus, for the in-flight kinds, the Kind to
// return to when the action finishes.
type State struct {
	Kind   Kind
	Resume Kind
}

func (s State) String() string {
	if s.Kind == Posting || s.Kind == Claiming {
		return fmt.Sprintf("%s(from %s)", s.Kind, s.Resume)
	}
	return s.Kind.String()
}

// Authenticated reports whether the state holds a session.
func (s State) Authenticated() bool {
	return s.Kind != Anonymous
}

// Event is something that happened to the view.
type Event int

const (
	EventSessionMissing Event = iota
	EventSessionFound
	EventLoginSucceeded
	EventListingsLoaded
	EventListingsEmpty
	EventListingsFailed
	EventPostStarted
	EventPostFinished
	EventClaimStarted
	EventClaimFinished
	EventLogout
)

var eventNames = [...]string{
	EventSessionMissing: "session-missing",
	EventSessionFound:   "session-found",
	EventLoginSucceeded: "login-succeeded",
	EventListingsLoaded: "listings-loaded",
	EventListingsEmpty:  "listings-empty",
	EventListingsFailed: "listings-failed",
	EventPostStarted:    "post-started",
	EventPostFinished:   "post-finished",
	EventClaimStarted:   "claim-started",
	EventClaimFinished:  "claim-finished",
	EventLogout:         "logout",
}

func (e Event) String() string {
	if int(e) >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrInvalidTransition is returned by Next for events the state does not accept.
var ErrInvalidTransition = errors.New("invalid transition")

// Initial is the state of a freshly opened view.
func Initial(hasSession bool) State {
	if hasSession {
		return State{Kind: NoListings}
	}
	return State{Kind: Anonymous}
}

// Next is the transition function. It is pure; the controller performs the
// side effects that go with each event.
func Next(s State, e Event) (State, error) {
	switch s.Kind {
	case Anonymous:
		switch e {
		case EventSessionMissing, EventLogout:
			return s, nil
		case EventSessionFound, EventLoginSucceeded:
			return State{Kind: NoListings}, nil
		}

	case NoListings, Listings:
		switch e {
		case EventSessionMissing, EventLogout:
			return State{Kind: Anonymous}, nil
		case EventSessionFound:
			return s, nil
		case EventLoginSucceeded:
			return State{Kind: NoListings}, nil
		case EventListingsLoaded:
			return State{Kind: Listings}, nil
		case EventListingsEmpty, EventListingsFailed:
			return State{Kind: NoListings}, nil
		case EventPostStarted:
			return State{Kind: Posting, Resume: s.Kind}, nil
		case EventClaimStarted:
			if s.Kind == Listings {
				return State{Kind: Claiming, Resume: s.Kind}, nil
			}
		}

	case Posting:
		if e == EventPostFinished {
			return State{Kind: s.Resume}, nil
		}

	case Claiming:
		if e == EventClaimFinished {
			return State{Kind: s.Resume}, nil
		}
	}

	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
