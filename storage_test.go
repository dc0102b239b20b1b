package wordquiz

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	if err := s.Upload("uploads/lessons/中1/lesson1.xlsx", []byte("abc"), "application/octet-stream"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	data, err := s.Open("uploads/lessons/中1/lesson1.xlsx")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(data, []byte("abc")) {
		t.Errorf("round trip mismatch: %q", data)
	}
}

func TestLocalStorageURL(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if err := s.Upload("generated/q.pdf", []byte("pdf"), "application/pdf"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	u, err := s.URL("generated/q.pdf")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if !filepath.IsAbs(u) {
		t.Errorf("URL %q is not absolute", u)
	}
	data, err := os.ReadFile(u)
	if err != nil {
		t.Fatalf("reading URL target: %v", err)
	}
	if !bytes.Equal(data, []byte("pdf")) {
		t.Errorf("URL target content mismatch: %q", data)
	}

	if _, err := s.URL("../escape.pdf"); err == nil {
		t.Error("URL accepted a traversal key")
	}
}

func TestLocalStorageList(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	for _, key := range []string{"uploads/a.xlsx", "uploads/b.xlsx", "uploads/note.txt", "generated/x.pdf"} {
		if err := s.Upload(key, []byte(key), "application/octet-stream"); err != nil {
			t.Fatalf("Upload %s: %v", key, err)
		}
		// Distinct mod times keep the newest-first ordering observable.
		time.Sleep(10 * time.Millisecond)
	}

	keys, err := s.List("uploads", ".xlsx")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	if keys[0] != "uploads/b.xlsx" || keys[1] != "uploads/a.xlsx" {
		t.Errorf("expected newest first, got %v", keys)
	}

	empty, err := s.List("nothing-here", ".xlsx")
	if err != nil {
		t.Fatalf("List of missing prefix: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no keys, got %v", empty)
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	for _, key := range []string{"../escape.txt", "/abs.txt", "a/../../b"} {
		if err := s.Upload(key, []byte("x"), "text/plain"); err == nil {
			t.Errorf("Upload(%q) should have been rejected", key)
		}
		if _, err := s.Open(key); err == nil {
			t.Errorf("Open(%q) should have been rejected", key)
		}
	}
}
