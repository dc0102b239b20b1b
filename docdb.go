package wordquiz

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB indexes generated batches and documents so the web UI and CLI can list
// and re-fetch them. The PDF bytes themselves live in Storage; only keys and
// metadata are recorded here.
type DB struct {
	db *sql.DB
}

// DBBatch is one generation request as recorded in the index.
type DBBatch struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Mode         string    `json:"mode"`
	Criteria     string    `json:"criteria"`
	NumQuestions int       `json:"num_questions"`
	NumSets      int       `json:"num_sets"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"` // "generating", "completed", "failed"
}

// DBDocument is one stored document belonging to a batch.
type DBDocument struct {
	Key       string    `json:"key"`
	BatchID   string    `json:"batch_id"`
	SetIndex  int       `json:"set_index"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Batch status values.
const (
	BatchGenerating = "generating"
	BatchCompleted  = "completed"
	BatchFailed     = "failed"
)

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			mode TEXT NOT NULL,
			criteria TEXT NOT NULL,
			num_questions INTEGER NOT NULL,
			num_sets INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'generating'
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			set_index INTEGER NOT NULL,
			role TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (batch_id) REFERENCES batches(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateBatch records a new batch in the index
func (db *DB) CreateBatch(b *DBBatch) error {
	_, err := db.db.Exec(
		"INSERT INTO batches (id, source, mode, criteria, num_questions, num_sets, created_at, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.Source, b.Mode, b.Criteria, b.NumQuestions, b.NumSets, b.CreatedAt, b.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// GetBatch retrieves a batch by ID
func (db *DB) GetBatch(id string) (*DBBatch, error) {
	var b DBBatch
	err := db.db.QueryRow(
		"SELECT id, source, mode, criteria, num_questions, num_sets, created_at, status FROM batches WHERE id = ?",
		id,
	).Scan(&b.ID, &b.Source, &b.Mode, &b.Criteria, &b.NumQuestions, &b.NumSets, &b.CreatedAt, &b.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("batch not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return &b, nil
}

// GetBatches retrieves recent batches, newest first, optionally limited by count
func (db *DB) GetBatches(limit int) ([]DBBatch, error) {
	query := "SELECT id, source, mode, criteria, num_questions, num_sets, created_at, status FROM batches ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get batches: %w", err)
	}
	defer rows.Close()

	var batches []DBBatch
	for rows.Next() {
		var b DBBatch
		err := rows.Scan(&b.ID, &b.Source, &b.Mode, &b.Criteria, &b.NumQuestions, &b.NumSets, &b.CreatedAt, &b.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	return batches, nil
}

// UpdateBatchStatus updates the status of a batch
func (db *DB) UpdateBatchStatus(id, status string) error {
	_, err := db.db.Exec("UPDATE batches SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
	}
	return nil
}

// RecordDocument records a stored document in the index
func (db *DB) RecordDocument(d *DBDocument) error {
	_, err := db.db.Exec(
		"INSERT INTO documents (key, batch_id, set_index, role, created_at) VALUES (?, ?, ?, ?, ?)",
		d.Key, d.BatchID, d.SetIndex, d.Role, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

// GetBatchDocuments retrieves a batch's documents in set order, questions
// before answers within a set
func (db *DB) GetBatchDocuments(batchID string) ([]DBDocument, error) {
	rows, err := db.db.Query(
		"SELECT key, batch_id, set_index, role, created_at FROM documents WHERE batch_id = ? ORDER BY set_index, role DESC",
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var docs []DBDocument
	for rows.Next() {
		var d DBDocument
		err := rows.Scan(&d.Key, &d.BatchID, &d.SetIndex, &d.Role, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// RecordBatch writes a completed batch and all of its documents in one pass.
func (db *DB) RecordBatch(batch *GenerationBatch, source, criteria string) error {
	rec := &DBBatch{
		ID:           batch.ID,
		Source:       source,
		Mode:         batch.Mode.Label,
		Criteria:     criteria,
		NumQuestions: 0,
		NumSets:      len(batch.Pairs),
		CreatedAt:    batch.CreatedAt,
		Status:       BatchCompleted,
	}
	if len(batch.Pairs) > 0 {
		rec.NumQuestions = len(batch.Pairs[0].Rows)
	}
	if err := db.CreateBatch(rec); err != nil {
		return err
	}
	for _, p := range batch.Pairs {
		for _, doc := range []RenderedDocument{p.Question, p.Answer} {
			d := &DBDocument{
				Key:       doc.Key,
				BatchID:   batch.ID,
				SetIndex:  p.SetIndex,
				Role:      string(doc.Role),
				CreatedAt: batch.CreatedAt,
			}
			if err := db.RecordDocument(d); err != nil {
				return err
			}
		}
	}
	return nil
}
