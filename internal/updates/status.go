package updates

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hydepanel/sysupdates/internal/common/output"
)

// Status is the object polled by the panel widget
type Status struct {
	// Total is the sum of the per-source counts, never negative
	Total int
	// Tooltip has one line per checked source
	Tooltip string
	// Results holds per-source detail; it is not serialized
	Results []SourceResult
}

// statusJSON fixes the key order and string-typed total of the wire format
type statusJSON struct {
	Total   string `json:"total"`
	Tooltip string `json:"tooltip"`
}

// AppliedStatus is reported after apply mode, whatever the upgrade did
func AppliedStatus() *Status {
	return &Status{Total: 0, Tooltip: "0"}
}

// NewStatus sums results and builds the tooltip in result order.
// Unchecked sources are dropped.
func NewStatus(results []SourceResult) *Status {
	status := &Status{}
	var lines []string

	for _, r := range results {
		if !r.Checked {
			continue
		}
		status.Results = append(status.Results, r)
		if r.Count > 0 {
			status.Total += r.Count
		}
		lines = append(lines, TooltipLine(r))
	}

	status.Tooltip = strings.Join(lines, "\n")
	return status
}

// TooltipLine renders "<glyph> <label> <count>"
func TooltipLine(r SourceResult) string {
	parts := make([]string, 0, 3)
	if r.Glyph != "" {
		parts = append(parts, r.Glyph)
	}
	if r.Label != "" {
		parts = append(parts, r.Label)
	}
	parts = append(parts, strconv.Itoa(r.Count))
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the status as {"total":"<n>","tooltip":"<text>"}
func (s *Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{
		Total:   strconv.Itoa(s.Total),
		Tooltip: s.Tooltip,
	})
}

// WriteJSON writes the status as a single JSON line. Tooltip newlines are
// escaped by the encoder, so the widget receives literal \n separators.
func (s *Status) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(statusJSON{
		Total:   strconv.Itoa(s.Total),
		Tooltip: s.Tooltip,
	})
}

// WriteText writes a colored, human-readable summary
func (s *Status) WriteText(w io.Writer) error {
	header := output.Sprintf(output.Header, "Pending updates: ") + output.FormatCount(s.Total, false)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, r := range s.Results {
		line := fmt.Sprintf("  %s: %s", output.FormatSource(r.Glyph, r.Label), output.FormatCount(r.Count, r.Err != nil))
		switch {
		case !r.Installed:
			line += " " + output.Sprint(output.Dim, "(not installed)")
		case r.Err != nil:
			line += " " + output.Sprintf(output.Dim, "(check failed: %v)", r.Err)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
