// Package extract defines the text-extraction collaborator boundary. The
// engine consumes page-segmented text; how that text is recovered from a
// document is this interface's problem, not the engine's.
package extract

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

// TextExtractor turns a document stream into page-segmented text. The
// contract: pages are in document order, and embedded layout whitespace is
// preserved well enough that numeric tail peeling can find adjacent digit
// runs.
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader) ([]statement.Page, error)
}

// ErrPDFNotSupported is returned until a native PDF text layer is wired in.
// Scanned statements come in as extracted text today.
var ErrPDFNotSupported = errors.New("pdf text extraction not supported, upload extracted text")

// PDF is a placeholder extractor for raw PDF uploads.
type PDF struct{}

// Extract implements TextExtractor.
func (PDF) Extract(_ context.Context, _ io.Reader) ([]statement.Page, error) {
	return nil, ErrPDFNotSupported
}

// PlainText extracts pre-extracted text documents, splitting pages on the
// form-feed marker.
type PlainText struct{}

// Extract implements TextExtractor.
func (PlainText) Extract(_ context.Context, r io.Reader) ([]statement.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	chunks := strings.Split(string(data), "\f")
	pages := make([]statement.Page, len(chunks))
	for i, chunk := range chunks {
		pages[i] = statement.Page{Number: i + 1, Text: chunk}
	}
	return pages, nil
}
