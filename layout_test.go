package wordquiz

import (
	"bytes"
	"testing"
)

func testEngine() *LayoutEngine {
	return NewLayoutEngine(DefaultStyles(FontConfig{Family: "Helvetica"}))
}

func TestRenderProducesPDF(t *testing.T) {
	rows := SampledSet(numberedPool(10).Records)

	data, err := testEngine().Render(rows, ModeEnJa, false, "test sheet")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
	pages, err := PageCount(data)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if pages != 1 {
		t.Errorf("expected 10 rows on one page, got %d pages", pages)
	}
}

func TestRenderPaginates(t *testing.T) {
	rows := SampledSet(numberedPool(80).Records)

	data, err := testEngine().Render(rows, ModeEnJa, false, "long sheet")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	pages, err := PageCount(data)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if pages < 2 {
		t.Errorf("expected 80 rows to flow to more than one page, got %d", pages)
	}
}

// Question and answer sheets must page identically so double-sided printing
// stays aligned.
func TestRenderAnswerSheetAligns(t *testing.T) {
	rows := SampledSet(numberedPool(50).Records)
	engine := testEngine()

	question, err := engine.Render(rows, ModeEnJa, false, "sheet")
	if err != nil {
		t.Fatalf("Render question: %v", err)
	}
	answer, err := engine.Render(rows, ModeEnJa, true, "sheet")
	if err != nil {
		t.Fatalf("Render answer: %v", err)
	}

	qp, err := PageCount(question)
	if err != nil {
		t.Fatalf("PageCount question: %v", err)
	}
	ap, err := PageCount(answer)
	if err != nil {
		t.Fatalf("PageCount answer: %v", err)
	}
	if qp != ap {
		t.Errorf("question has %d pages but answer has %d", qp, ap)
	}
	if bytes.Equal(question, answer) {
		t.Errorf("answer sheet should reveal content the question sheet hides")
	}
}

func TestRenderOddRowCount(t *testing.T) {
	rows := SampledSet(numberedPool(7).Records)

	data, err := testEngine().Render(rows, ModeJaEn, true, "odd")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if _, err := PageCount(data); err != nil {
		t.Fatalf("trailing unpaired row broke the document: %v", err)
	}
}

func TestRenderRecordWithoutNumber(t *testing.T) {
	rows := SampledSet{
		{Word: "apple", Meaning: "ringo"},
		{Word: "book", Meaning: "hon", Number: 12, HasNumber: true},
	}

	data, err := testEngine().Render(rows, ModeEnJa, false, "mixed")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if _, err := PageCount(data); err != nil {
		t.Fatalf("PageCount: %v", err)
	}
}
