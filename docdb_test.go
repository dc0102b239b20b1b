package wordquiz

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.CloseDB() })
	if err := db.CreateTables(); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}
	return db
}

func TestBatchLifecycle(t *testing.T) {
	db := testDB(t)

	b := &DBBatch{
		ID:           "batch-1",
		Source:       "lesson1",
		Mode:         "英和",
		Criteria:     "No.1–10",
		NumQuestions: 5,
		NumSets:      2,
		CreatedAt:    time.Now(),
		Status:       BatchGenerating,
	}
	if err := db.CreateBatch(b); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, err := db.GetBatch("batch-1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if got.Source != "lesson1" || got.NumSets != 2 || got.Status != BatchGenerating {
		t.Errorf("unexpected batch: %+v", got)
	}

	if err := db.UpdateBatchStatus("batch-1", BatchCompleted); err != nil {
		t.Fatalf("UpdateBatchStatus: %v", err)
	}
	got, err = db.GetBatch("batch-1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if got.Status != BatchCompleted {
		t.Errorf("status = %q, want %q", got.Status, BatchCompleted)
	}

	if _, err := db.GetBatch("missing"); err == nil {
		t.Errorf("expected an error for a missing batch")
	}
}

func TestRecordBatchAndDocuments(t *testing.T) {
	db := testDB(t)

	pool := numberedPool(10)
	batch, err := testGenerator().GenerateBatch(pool, GenerationRequest{
		BaseName:     "lesson1",
		Criteria:     RangeCriteria{Start: 1, End: 10},
		Mode:         ModeEnJa,
		NumQuestions: 3,
		NumSets:      2,
	})
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}

	if err := db.RecordBatch(batch, "lesson1", "No.1–10"); err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}

	rec, err := db.GetBatch(batch.ID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if rec.NumQuestions != 3 || rec.NumSets != 2 || rec.Status != BatchCompleted {
		t.Errorf("unexpected batch record: %+v", rec)
	}

	docs, err := db.GetBatchDocuments(batch.ID)
	if err != nil {
		t.Fatalf("GetBatchDocuments: %v", err)
	}
	if len(docs) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(docs))
	}
	// Set order, questions before answers within a set.
	wantRoles := []string{"questions", "answers", "questions", "answers"}
	for i, d := range docs {
		if d.Role != wantRoles[i] {
			t.Errorf("document %d role = %q, want %q", i, d.Role, wantRoles[i])
		}
		if wantSet := i/2 + 1; d.SetIndex != wantSet {
			t.Errorf("document %d set = %d, want %d", i, d.SetIndex, wantSet)
		}
	}

	batches, err := db.GetBatches(10)
	if err != nil {
		t.Fatalf("GetBatches: %v", err)
	}
	if len(batches) != 1 {
		t.Errorf("expected 1 batch listed, got %d", len(batches))
	}
}
