package render

import "sync"

// Flips remembers which cards show their back face. It is pure presentation
// state: fetching or re-fetching listings never touches it. A nil *Flips
// reports every card as unflipped.
type Flips struct {
	mu      sync.Mutex
	flipped map[string]struct{}
}

func NewFlips() *Flips {
	return &Flips{flipped: make(map[string]struct{})}
}

// Toggle flips the card and returns its new state.
func (f *Flips) Toggle(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.flipped[id]; ok {
		delete(f.flipped, id)
		return false
	}
	f.flipped[id] = struct{}{}
	return true
}

func (f *Flips) IsFlipped(id string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.flipped[id]
	return ok
}
