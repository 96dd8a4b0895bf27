package tutor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eureka-edu/studybuddy/internal/models"
)

func TestAssembleContextFormatsSelectedDocuments(t *testing.T) {
	docs := []models.StudyDocument{
		{Name: "hoofdstuk1.txt", Content: "De Romeinen bouwden wegen.", Selected: true},
		{Name: "hoofdstuk2.txt", Content: "Aquaducten vervoerden water.", Selected: true},
	}

	out, present := AssembleContext(docs)

	assert.True(t, present)
	assert.Equal(t,
		"--- DOCUMENT: hoofdstuk1.txt ---\nDe Romeinen bouwden wegen."+
			"\n\n--- DOCUMENT: hoofdstuk2.txt ---\nAquaducten vervoerden water.",
		out)
}

func TestAssembleContextSkipsDeselected(t *testing.T) {
	docs := []models.StudyDocument{
		{Name: "a.txt", Content: "alpha", Selected: true},
		{Name: "b.txt", Content: "beta", Selected: false},
	}

	out, present := AssembleContext(docs)

	assert.True(t, present)
	assert.NotContains(t, out, "beta")
	assert.Contains(t, out, "alpha")
}

func TestAssembleContextAbsentWhenNothingSelected(t *testing.T) {
	out, present := AssembleContext([]models.StudyDocument{
		{Name: "a.txt", Content: "alpha", Selected: false},
	})

	assert.False(t, present)
	assert.Empty(t, out)

	out, present = AssembleContext(nil)
	assert.False(t, present)
	assert.Empty(t, out)
}

func TestTruncateContextUnderCapIsUntouched(t *testing.T) {
	s := "korte context"
	assert.Equal(t, s, TruncateContext(s, MaxContextChars))
}

func TestTruncateContextCapsAndMarks(t *testing.T) {
	long := strings.Repeat("a", MaxContextChars+500)

	out := TruncateContext(long, MaxContextChars)

	assert.True(t, strings.HasSuffix(out, "[Ingekort voor snelheid: context te lang]"))
	assert.Equal(t, MaxContextChars, len([]rune(strings.TrimSuffix(out, truncationMarker))))
}

func TestTruncateContextIsIdempotent(t *testing.T) {
	long := strings.Repeat("b", MaxContextChars*2)

	once := TruncateContext(long, MaxContextChars)
	twice := TruncateContext(once, MaxContextChars)

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, truncationMarker))
}

func TestSystemInstructionBranches(t *testing.T) {
	grounded := SystemInstruction("--- DOCUMENT: x ---\ninhoud", true)
	assert.Contains(t, grounded, "GEBRUIK DIT LESMATERIAAL")
	assert.Contains(t, grounded, "inhoud")

	ungrounded := SystemInstruction("", false)
	assert.Contains(t, ungrounded, "geen specifiek lesmateriaal")
	assert.NotContains(t, ungrounded, "GEBRUIK DIT LESMATERIAAL")
}
