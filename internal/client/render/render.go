// Package render turns listings into display fragments: HTML flip cards for
// the exported dashboard, and plain text for the terminal.
package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dmitrijs2005/harvesthub/internal/client/models"
)

// FallbackPhotoURL is shown when a listing has no photo.
const FallbackPhotoURL = "https://images.unsplash.com/photo-1504674900247-0877df9cc836?auto=format&fit=crop&w=400&q=80"

// Placeholders for missing optional fields.
const (
	NotAvailable  = "N/A"
	UnknownPoster = "Unknown"
)

// Container texts.
const (
	LoadingText = "Loading..."
	EmptyText   = "No food listings found."
	FailedText  = "Failed to load listings."
)

// Status is the fetch state of the listing container.
type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	StatusFailed
)

// View is everything the container needs to draw itself.
type View struct {
	Status   Status
	Listings []models.FoodListing
}

// card is a listing with fallbacks already applied.
type card struct {
	ID          string
	PhotoURL    string
	Description string
	Location    string
	Quantity    string
	ShelfLife   string
	PosterName  string
	Status      string
	Flipped     bool
}

func newCard(f models.FoodListing, flipped bool) card {
	return card{
		ID:          f.Key(),
		PhotoURL:    or(f.PhotoURL, FallbackPhotoURL),
		Description: f.Description,
		Location:    f.Location,
		Quantity:    or(f.Quantity, NotAvailable),
		ShelfLife:   or(f.ShelfLife, NotAvailable),
		PosterName:  or(f.PosterName, UnknownPoster),
		Status:      f.Status,
		Flipped:     flipped,
	}
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

var cardTemplate = template.Must(template.New("cards").Parse(`
{{- define "card" -}}
<div class="food-card{{if .Flipped}} flipped{{end}}" data-id="{{.ID}}">
    <div class="food-card-inner">
        <div class="food-card-front">
            <img src="{{.PhotoURL}}" alt="{{.Description}}" class="food-img">
            <div class="food-info">
                <h4>{{.Description}}</h4>
                <p>Location: {{.Location}}</p>
                <p>Quantity: {{.Quantity}}</p>
            </div>
        </div>
        <div class="food-card-back">
            <h4>Estimated Shelf Life</h4>
            <p>{{.ShelfLife}}</p>
            <h4>Posted by</h4>
            <p>{{.PosterName}}</p>
            <button class="claim-btn">Claim</button>
        </div>
    </div>
</div>
{{end -}}
{{- define "container" -}}
<div id="food-listings">
{{- if .Loading}}<div class="loading">` + LoadingText + `</div>
{{- else if .Failed}}<div class="error">` + FailedText + `</div>
{{- else if not .Cards}}<div>` + EmptyText + `</div>
{{- else}}
{{range .Cards}}{{template "card" .}}{{end}}
{{- end}}</div>
{{end -}}
`))

// HTML renders one flip card per listing, in order. Zero listings give "".
func HTML(listings []models.FoodListing, flips *Flips) (string, error) {
	var sb strings.Builder
	for _, f := range listings {
		if err := cardTemplate.ExecuteTemplate(&sb, "card", newCard(f, flips.IsFlipped(f.Key()))); err != nil {
			return "", fmt.Errorf("render card %d: %w", f.ID, err)
		}
	}
	return sb.String(), nil
}

// Container writes the whole food-listings element for v.
func Container(w io.Writer, v View, flips *Flips) error {
	cards := make([]card, 0, len(v.Listings))
	for _, f := range v.Listings {
		cards = append(cards, newCard(f, flips.IsFlipped(f.Key())))
	}
	data := struct {
		Loading bool
		Failed  bool
		Cards   []card
	}{Loading: v.Status == StatusLoading, Failed: v.Status == StatusFailed, Cards: cards}

	if err := cardTemplate.ExecuteTemplate(w, "container", data); err != nil {
		return fmt.Errorf("render listings: %w", err)
	}
	return nil
}
