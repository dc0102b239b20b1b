package wordquiz

import (
	"fmt"
	"strings"
	"time"
)

// WordRecord is one quiz-able entry from a word list.
type WordRecord struct {
	Word        string `json:"word"`
	Meaning     string `json:"meaning"`
	Number      int    `json:"number"`
	HasNumber   bool   `json:"has_number"`
	Section     string `json:"section,omitempty"`
	SourceLabel string `json:"source_label,omitempty"`
}

// SampledSet is an ordered random draw from a filtered pool. Order carries
// through to the rendered documents, so a question sheet and its answer sheet
// line up cell for cell.
type SampledSet []WordRecord

// Field names a column of the word list that a quiz mode reads from.
type Field int

const (
	FieldWord Field = iota
	FieldMeaning
)

// QuizMode fixes which column is the prompt and which is the answer.
type QuizMode struct {
	QuestionField Field  `json:"question_field"`
	AnswerField   Field  `json:"answer_field"`
	Label         string `json:"label"`
}

var (
	// ModeEnJa shows the word and asks for the meaning.
	ModeEnJa = QuizMode{QuestionField: FieldWord, AnswerField: FieldMeaning, Label: "英和"}
	// ModeJaEn shows the meaning and asks for the word.
	ModeJaEn = QuizMode{QuestionField: FieldMeaning, AnswerField: FieldWord, Label: "和英"}
)

// ParseMode maps the form/flag value to a quiz mode.
func ParseMode(s string) (QuizMode, error) {
	switch s {
	case "en-ja":
		return ModeEnJa, nil
	case "ja-en":
		return ModeJaEn, nil
	}
	return QuizMode{}, &ValidationError{Msg: fmt.Sprintf("unknown quiz mode: %q", s)}
}

func (m QuizMode) field(r WordRecord, f Field) string {
	if f == FieldMeaning {
		return r.Meaning
	}
	return r.Word
}

// QuestionText returns the prompt text for a record under this mode.
func (m QuizMode) QuestionText(r WordRecord) string { return m.field(r, m.QuestionField) }

// AnswerText returns the answer text for a record under this mode.
func (m QuizMode) AnswerText(r WordRecord) string { return m.field(r, m.AnswerField) }

// SelectionCriteria picks rows out of a pool. Exactly one concrete variant is
// active per request; the loader decides which variants are legal based on the
// columns present.
type SelectionCriteria interface {
	// Validate reports malformed parameters before any rows are touched.
	Validate() error
	// Describe returns the human-readable fragment used in titles.
	Describe() string
	// RequiredColumn names the governing column, or "" if none.
	RequiredColumn() string
	// AllowsMultiSource reports whether the criteria may run against a pool
	// concatenated from several source tables. Range selection is
	// single-source only; the asymmetry is inherited behavior, kept
	// deliberate here rather than left as an accident of the code path.
	AllowsMultiSource() bool

	matches(r WordRecord) bool
}

// RangeCriteria keeps rows whose number falls in [Start, End], inclusive.
type RangeCriteria struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (c RangeCriteria) Validate() error {
	if c.Start > c.End {
		return &ValidationError{Msg: fmt.Sprintf("start number %d exceeds end number %d", c.Start, c.End)}
	}
	return nil
}

func (c RangeCriteria) Describe() string { return fmt.Sprintf("No.%d–%d", c.Start, c.End) }

func (c RangeCriteria) RequiredColumn() string { return ColumnNumber }

func (c RangeCriteria) AllowsMultiSource() bool { return false }

func (c RangeCriteria) matches(r WordRecord) bool {
	return r.HasNumber && r.Number >= c.Start && r.Number <= c.End
}

// SectionCriteria keeps rows whose section matches one of the named sections
// exactly.
type SectionCriteria struct {
	Sections []string `json:"sections"`
}

func (c SectionCriteria) Validate() error {
	if len(c.Sections) == 0 {
		return &ValidationError{Msg: "no sections selected"}
	}
	return nil
}

func (c SectionCriteria) Describe() string { return strings.Join(c.Sections, ", ") }

func (c SectionCriteria) RequiredColumn() string { return ColumnSection }

func (c SectionCriteria) AllowsMultiSource() bool { return true }

func (c SectionCriteria) matches(r WordRecord) bool {
	for _, s := range c.Sections {
		if r.Section == s {
			return true
		}
	}
	return false
}

// DocumentRole tags a rendered document as the question or the answer side.
type DocumentRole string

const (
	RoleQuestions DocumentRole = "questions"
	RoleAnswers   DocumentRole = "answers"
)

// RenderedDocument is one complete paginated PDF plus its storage identity.
type RenderedDocument struct {
	Key  string       `json:"key"`
	Role DocumentRole `json:"role"`
	Data []byte       `json:"-"`
}

// SetPair is one set's question document and its matching answer document,
// rendered from the same sampled rows.
type SetPair struct {
	SetIndex int              `json:"set_index"`
	Rows     SampledSet       `json:"rows"`
	Question RenderedDocument `json:"question"`
	Answer   RenderedDocument `json:"answer"`
}

// GenerationBatch is the ordered result of one generation request, one pair
// per set. Pair order is the order Merge and Bundle operate in.
type GenerationBatch struct {
	ID        string    `json:"id"`
	Mode      QuizMode  `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
	Pairs     []SetPair `json:"pairs"`
}

// GenerationRequest describes one batch: what to draw, how, and how often.
type GenerationRequest struct {
	// BaseName is the source name shown in titles, typically the workbook
	// file name without extension.
	BaseName     string            `json:"base_name"`
	Criteria     SelectionCriteria `json:"-"`
	Mode         QuizMode          `json:"mode"`
	NumQuestions int               `json:"num_questions"`
	NumSets      int               `json:"num_sets"`
	// MaxSets is the externally supplied ceiling on NumSets; zero or
	// negative means no ceiling. Quota policy lives with the caller.
	MaxSets int `json:"max_sets,omitempty"`
}
