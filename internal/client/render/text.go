package render

import (
	"fmt"
	"io"
	"strings"
)

// Text draws v for the terminal. Each card shows its front face (summary)
// unless it has been flipped, in which case the back face (details and the
// claim hint) is shown.
func Text(w io.Writer, v View, flips *Flips) error {
	switch {
	case v.Status == StatusLoading:
		_, err := fmt.Fprintln(w, LoadingText)
		return err
	case v.Status == StatusFailed:
		_, err := fmt.Fprintln(w, FailedText)
		return err
	case len(v.Listings) == 0:
		_, err := fmt.Fprintln(w, EmptyText)
		return err
	}

	var sb strings.Builder
	for _, f := range v.Listings {
		c := newCard(f, flips.IsFlipped(f.Key()))
		fmt.Fprintf(&sb, "#%s ", c.ID)
		if c.Flipped {
			fmt.Fprintf(&sb, "[back] Estimated shelf life: %s | Posted by: %s | claim %s\n", c.ShelfLife, c.PosterName, c.ID)
			continue
		}
		fmt.Fprintf(&sb, "%s | Location: %s | Quantity: %s", c.Description, c.Location, c.Quantity)
		if c.Status != "" {
			fmt.Fprintf(&sb, " | %s", c.Status)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
