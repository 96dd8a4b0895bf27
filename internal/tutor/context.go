package tutor

import (
	"fmt"
	"strings"

	"github.com/eureka-edu/studybuddy/internal/models"
)

// MaxContextChars caps the assembled study context before it reaches the
// completion provider. Unranked concatenation of every selected document can
// blow past the model's context window; truncation is blunt but predictable.
const MaxContextChars = 12000

const truncationMarker = "\n\n[Ingekort voor snelheid: context te lang]"

// AssembleContext builds the grounding material string from the selected
// documents. The second return value distinguishes "no grounding material"
// (false) from "grounding material that happens to be empty" (true); the
// two drive different system-instruction branches.
func AssembleContext(docs []models.StudyDocument) (string, bool) {
	var parts []string
	for _, d := range docs {
		if !d.Selected {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- DOCUMENT: %s ---\n%s", d.Name, d.Content))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n\n"), true
}

// TruncateContext caps s at max characters, appending an explicit marker so
// the model knows the material is incomplete. Truncating an already-capped
// string is a no-op.
func TruncateContext(s string, max int) string {
	clean := strings.TrimSpace(s)
	runes := []rune(clean)
	if len(runes) <= max {
		return clean
	}
	if strings.HasSuffix(clean, truncationMarker) &&
		len(runes)-len([]rune(truncationMarker)) <= max {
		return clean
	}
	return string(runes[:max]) + truncationMarker
}
