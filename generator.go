package wordquiz

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// SetGenerator produces batches of question/answer document pairs. Sets are
// generated strictly in order; each draws independently from the same
// filtered pool, so two sets may overlap.
type SetGenerator struct {
	layout *LayoutEngine
	rng    *rand.Rand
	now    func() time.Time
}

// NewSetGenerator creates a generator rendering with the given styles. rng
// may be nil for a time-seeded source; inject a fixed one for reproducible
// draws.
func NewSetGenerator(styles StyleConfig, rng *rand.Rand) *SetGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SetGenerator{
		layout: NewLayoutEngine(styles),
		rng:    rng,
		now:    time.Now,
	}
}

// GenerateBatch runs the full pipeline for one request: per set, one
// independent sample, one question document and one answer document rendered
// from that same sample. Any selection or render failure aborts the whole
// batch; the error names the failing set.
func (g *SetGenerator) GenerateBatch(pool *Table, req GenerationRequest) (*GenerationBatch, error) {
	if req.NumSets < 1 {
		return nil, &ValidationError{Msg: "number of sets must be at least 1"}
	}
	if req.MaxSets > 0 && req.NumSets > req.MaxSets {
		return nil, &ValidationError{Msg: fmt.Sprintf("at most %d sets per request", req.MaxSets)}
	}
	if req.NumQuestions < 1 {
		return nil, &ValidationError{Msg: "question count must be at least 1"}
	}
	if err := req.Criteria.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Generating %d set(s) of %d questions from %s (%s)",
		req.NumSets, req.NumQuestions, req.BaseName, req.Mode.Label)

	batch := &GenerationBatch{
		ID:        uuid.NewString(),
		Mode:      req.Mode,
		CreatedAt: g.now(),
		Pairs:     make([]SetPair, 0, req.NumSets),
	}

	for setIndex := 1; setIndex <= req.NumSets; setIndex++ {
		rows, err := Select(pool, req.Criteria, req.NumQuestions, g.rng)
		if err != nil {
			return nil, fmt.Errorf("set %d: %w", setIndex, err)
		}

		titleQ, titleA := ComposeTitles(req.BaseName, req.Criteria.Describe(),
			len(rows), req.Mode.Label, setIndex, req.NumSets)

		questionData, err := g.layout.Render(rows, req.Mode, false, titleQ)
		if err != nil {
			return nil, fmt.Errorf("set %d: question document: %w", setIndex, err)
		}
		answerData, err := g.layout.Render(rows, req.Mode, true, titleA)
		if err != nil {
			return nil, fmt.Errorf("set %d: answer document: %w", setIndex, err)
		}

		stamp := g.now().Format("20060102-150405")
		suffix := shortID()
		pair := SetPair{
			SetIndex: setIndex,
			Rows:     rows,
			Question: RenderedDocument{
				Key:  documentKey(RoleQuestions, req.Mode.Label, stamp, setIndex, req.NumSets, suffix),
				Role: RoleQuestions,
				Data: questionData,
			},
			Answer: RenderedDocument{
				Key:  documentKey(RoleAnswers, req.Mode.Label, stamp, setIndex, req.NumSets, suffix),
				Role: RoleAnswers,
				Data: answerData,
			},
		}
		batch.Pairs = append(batch.Pairs, pair)
		VerboseLog("Set %d/%d done: %s, %s", setIndex, req.NumSets, pair.Question.Key, pair.Answer.Key)
	}

	log.Printf("Batch %s complete: %d pair(s)", batch.ID, len(batch.Pairs))
	return batch, nil
}

// documentKey builds the storage identifier. The set suffix appears only for
// multi-set batches; the random suffix keeps concurrent requests from
// colliding.
func documentKey(role DocumentRole, modeLabel, stamp string, setIndex, numSets int, suffix string) string {
	setPart := ""
	if numSets > 1 {
		setPart = fmt.Sprintf("_v%d", setIndex)
	}
	return fmt.Sprintf("%s_%s_%s%s_%s.pdf", role, modeLabel, stamp, setPart, suffix)
}

func shortID() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:4])
}
