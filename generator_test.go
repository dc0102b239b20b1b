package wordquiz

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
)

func testGenerator() *SetGenerator {
	return NewSetGenerator(DefaultStyles(FontConfig{Family: "Helvetica"}), testRNG())
}

func TestGenerateBatch(t *testing.T) {
	pool := numberedPool(10)

	batch, err := testGenerator().GenerateBatch(pool, GenerationRequest{
		BaseName:     "lesson1",
		Criteria:     RangeCriteria{Start: 1, End: 10},
		Mode:         ModeEnJa,
		NumQuestions: 4,
		NumSets:      3,
	})
	if err != nil {
		t.Fatalf("GenerateBatch returned error: %v", err)
	}
	if batch.ID == "" {
		t.Errorf("expected a batch ID")
	}
	if len(batch.Pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(batch.Pairs))
	}

	keyPattern := regexp.MustCompile(`^(questions|answers)_英和_\d{8}-\d{6}_v\d+_[0-9a-f]{8}\.pdf$`)
	seen := map[string]bool{}
	for i, pair := range batch.Pairs {
		if pair.SetIndex != i+1 {
			t.Errorf("pair %d has set index %d", i, pair.SetIndex)
		}
		if len(pair.Rows) != 4 {
			t.Errorf("set %d sampled %d rows, want 4", pair.SetIndex, len(pair.Rows))
		}
		for _, doc := range []RenderedDocument{pair.Question, pair.Answer} {
			if !keyPattern.MatchString(doc.Key) {
				t.Errorf("identifier %q does not match the expected pattern", doc.Key)
			}
			if seen[doc.Key] {
				t.Errorf("duplicate identifier %q", doc.Key)
			}
			seen[doc.Key] = true
			if len(doc.Data) == 0 {
				t.Errorf("document %q is empty", doc.Key)
			}
		}
		if pair.Question.Role != RoleQuestions || pair.Answer.Role != RoleAnswers {
			t.Errorf("set %d has wrong role tags", pair.SetIndex)
		}
	}
}

func TestGenerateBatchSingleSetKey(t *testing.T) {
	pool := numberedPool(10)

	batch, err := testGenerator().GenerateBatch(pool, GenerationRequest{
		BaseName:     "lesson1",
		Criteria:     RangeCriteria{Start: 1, End: 10},
		Mode:         ModeJaEn,
		NumQuestions: 2,
		NumSets:      1,
	})
	if err != nil {
		t.Fatalf("GenerateBatch returned error: %v", err)
	}

	// The set suffix only appears for multi-set batches.
	keyPattern := regexp.MustCompile(`^questions_和英_\d{8}-\d{6}_[0-9a-f]{8}\.pdf$`)
	if key := batch.Pairs[0].Question.Key; !keyPattern.MatchString(key) {
		t.Errorf("single-set identifier %q should carry no _vN suffix", key)
	}
}

// A tiny pool forces every set to sample the same rows; the documents must
// still get distinct identifiers per set.
func TestGenerateBatchExhaustedPool(t *testing.T) {
	pool := numberedPool(2)

	batch, err := testGenerator().GenerateBatch(pool, GenerationRequest{
		BaseName:     "tiny",
		Criteria:     RangeCriteria{Start: 1, End: 2},
		Mode:         ModeEnJa,
		NumQuestions: 2,
		NumSets:      3,
	})
	if err != nil {
		t.Fatalf("GenerateBatch returned error: %v", err)
	}

	keys := map[string]bool{}
	for _, pair := range batch.Pairs {
		if len(pair.Rows) != 2 {
			t.Errorf("set %d drew %d rows, want the whole pool", pair.SetIndex, len(pair.Rows))
		}
		content := map[string]bool{}
		for _, r := range pair.Rows {
			content[r.Word] = true
		}
		if !content["w1"] || !content["w2"] {
			t.Errorf("set %d missing pool rows: %+v", pair.SetIndex, pair.Rows)
		}
		keys[pair.Question.Key] = true
		keys[pair.Answer.Key] = true
	}
	if len(keys) != 6 {
		t.Errorf("expected 6 distinct identifiers, got %d", len(keys))
	}
}

// Sets draw independently; over a larger pool they should not all agree.
func TestGenerateBatchIndependentDraws(t *testing.T) {
	pool := numberedPool(50)

	batch, err := testGenerator().GenerateBatch(pool, GenerationRequest{
		BaseName:     "big",
		Criteria:     RangeCriteria{Start: 1, End: 50},
		Mode:         ModeEnJa,
		NumQuestions: 5,
		NumSets:      6,
	})
	if err != nil {
		t.Fatalf("GenerateBatch returned error: %v", err)
	}

	first := fmt.Sprintf("%v", batch.Pairs[0].Rows)
	allSame := true
	for _, pair := range batch.Pairs[1:] {
		if fmt.Sprintf("%v", pair.Rows) != first {
			allSame = false
			break
		}
	}
	if allSame {
		t.Errorf("6 independent draws of 5 from 50 all produced the same sequence")
	}
}

func TestGenerateBatchValidation(t *testing.T) {
	pool := numberedPool(10)
	gen := testGenerator()

	tests := []struct {
		name string
		req  GenerationRequest
	}{
		{"zero sets", GenerationRequest{BaseName: "x", Criteria: RangeCriteria{Start: 1, End: 5}, Mode: ModeEnJa, NumQuestions: 3, NumSets: 0}},
		{"over ceiling", GenerationRequest{BaseName: "x", Criteria: RangeCriteria{Start: 1, End: 5}, Mode: ModeEnJa, NumQuestions: 3, NumSets: 5, MaxSets: 2}},
		{"zero questions", GenerationRequest{BaseName: "x", Criteria: RangeCriteria{Start: 1, End: 5}, Mode: ModeEnJa, NumQuestions: 0, NumSets: 1}},
		{"inverted range", GenerationRequest{BaseName: "x", Criteria: RangeCriteria{Start: 9, End: 1}, Mode: ModeEnJa, NumQuestions: 3, NumSets: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.GenerateBatch(pool, tt.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestGenerateBatchAbortsOnEmptySelection(t *testing.T) {
	pool := numberedPool(10)

	_, err := testGenerator().GenerateBatch(pool, GenerationRequest{
		BaseName:     "x",
		Criteria:     RangeCriteria{Start: 90, End: 99},
		Mode:         ModeEnJa,
		NumQuestions: 3,
		NumSets:      2,
	})
	var serr *EmptySelectionError
	if !errors.As(err, &serr) {
		t.Fatalf("expected EmptySelectionError, got %v", err)
	}
}
