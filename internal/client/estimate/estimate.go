// Package estimate stands in for the quantity and shelf-life inference
// service, which does not exist yet. Values are random placeholders with the
// same shape the service is expected to return ("42kg", "3 days"); nothing
// here looks at the photo or the description.
package estimate

import (
	"fmt"
	"math/rand/v2"
)

// Ranges of the placeholder values.
const (
	MinQuantityKg  = 10
	MaxQuantityKg  = 109
	MinShelfLifeDs = 2
	MaxShelfLifeDs = 6
)

// Estimator produces placeholder estimates from a random source.
type Estimator struct {
	intN func(n int) int
}

// New returns an Estimator backed by math/rand/v2.
func New() *Estimator {
	return &Estimator{intN: rand.IntN}
}

// NewWithSource is for tests: intN must return a value in [0, n).
func NewWithSource(intN func(n int) int) *Estimator {
	return &Estimator{intN: intN}
}

// Quantity returns a placeholder such as "57kg".
func (e *Estimator) Quantity() string {
	return fmt.Sprintf("%dkg", MinQuantityKg+e.intN(MaxQuantityKg-MinQuantityKg+1))
}

// ShelfLife returns a placeholder such as "4 days".
func (e *Estimator) ShelfLife() string {
	return fmt.Sprintf("%d days", MinShelfLifeDs+e.intN(MaxShelfLifeDs-MinShelfLifeDs+1))
}
