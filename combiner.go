package wordquiz

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Merge concatenates the pages of every input document, in list order, into
// one PDF. Pages are copied structurally; nothing is re-laid-out, so the
// output page count is the sum of the input page counts.
func Merge(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, &MergeError{Err: fmt.Errorf("no documents to merge")}
	}
	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, nil); err != nil {
		return nil, &MergeError{Err: err}
	}
	VerboseLog("Merged %d documents into %d bytes", len(docs), buf.Len())
	return buf.Bytes(), nil
}

// MergeBatch merges a batch's documents in pair order, question sheet then
// answer sheet per set, which is the order a duplex printer wants.
func MergeBatch(batch *GenerationBatch) ([]byte, error) {
	docs := make([][]byte, 0, 2*len(batch.Pairs))
	for _, p := range batch.Pairs {
		docs = append(docs, p.Question.Data, p.Answer.Data)
	}
	return Merge(docs)
}

// Bundle packages question/answer documents into a zip archive. Pair i
// (1-based) lives under copy_NN/ with exactly two entries, questions.pdf and
// answers.pdf. When the two lists differ in length the bundle truncates to
// the shorter one and proceeds; only a complete absence of pairs is an error.
// Construction is deterministic given the same input order.
func Bundle(questions, answers []RenderedDocument) ([]byte, error) {
	n := len(questions)
	if len(answers) < n {
		n = len(answers)
	}
	if n == 0 {
		return nil, &BundleError{Msg: "no complete question/answer pair to bundle"}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 0; i < n; i++ {
		folder := fmt.Sprintf("copy_%02d", i+1)
		if err := writeZipEntry(zw, folder+"/questions.pdf", questions[i].Data); err != nil {
			return nil, err
		}
		if err := writeZipEntry(zw, folder+"/answers.pdf", answers[i].Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &BundleError{Msg: fmt.Sprintf("failed to finalize archive: %v", err)}
	}
	VerboseLog("Bundled %d pair(s) into %d bytes", n, buf.Len())
	return buf.Bytes(), nil
}

// BundleBatch bundles a batch's pairs in order.
func BundleBatch(batch *GenerationBatch) ([]byte, error) {
	questions := make([]RenderedDocument, 0, len(batch.Pairs))
	answers := make([]RenderedDocument, 0, len(batch.Pairs))
	for _, p := range batch.Pairs {
		questions = append(questions, p.Question)
		answers = append(answers, p.Answer)
	}
	return Bundle(questions, answers)
}

// PageCount reports the number of pages in a rendered document.
func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), nil)
	if err != nil {
		return 0, &MergeError{Err: err}
	}
	return n, nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return &BundleError{Msg: fmt.Sprintf("failed to create %s: %v", name, err)}
	}
	if _, err := w.Write(data); err != nil {
		return &BundleError{Msg: fmt.Sprintf("failed to write %s: %v", name, err)}
	}
	return nil
}
