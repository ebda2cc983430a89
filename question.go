package qscrape

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// QuestionType distinguishes the supported question shapes.
type QuestionType string

// Supported question types.
const (
	QuestionTrueFalse QuestionType = "true-false"
	QuestionMultiple  QuestionType = "multiple"
)

// MaxChoices is the number of choice columns a question can fill.
const MaxChoices = 5

// Question is a normalized question record. Field order matches the
// exported column order.
type Question struct {
	Year        string       `csv:"ano" json:"ano"`
	Board       string       `csv:"banca" json:"banca"`
	Enunciation string       `csv:"enunciation" json:"enunciation"`
	ImageURL    string       `csv:"image" json:"image"`
	ChoiceA     string       `csv:"choice_a" json:"choice_a"`
	ChoiceB     string       `csv:"choice_b" json:"choice_b"`
	ChoiceC     string       `csv:"choice_c" json:"choice_c"`
	ChoiceD     string       `csv:"choice_d" json:"choice_d"`
	ChoiceE     string       `csv:"choice_e" json:"choice_e"`
	Type        QuestionType `csv:"type" json:"type"`
}

// Choices returns the five choice slots in order a..e.
func (q *Question) Choices() []string {
	return []string{q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD, q.ChoiceE}
}

// SetChoice fills the choice slot at index i (0 = a).
// Indexes outside the five slots are ignored.
func (q *Question) SetChoice(i int, text string) {
	switch i {
	case 0:
		q.ChoiceA = text
	case 1:
		q.ChoiceB = text
	case 2:
		q.ChoiceC = text
	case 3:
		q.ChoiceD = text
	case 4:
		q.ChoiceE = text
	}
}

// Hash returns a stable content hash used to deduplicate stored questions.
func (q *Question) Hash() string {
	var b strings.Builder
	b.WriteString(q.Year)
	b.WriteByte(0)
	b.WriteString(q.Board)
	b.WriteByte(0)
	b.WriteString(strings.Join(strings.Fields(q.Enunciation), " "))
	b.WriteByte(0)
	b.WriteString(q.ImageURL)
	for _, c := range q.Choices() {
		b.WriteByte(0)
		b.WriteString(c)
	}
	b.WriteByte(0)
	b.WriteString(string(q.Type))
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
