package scanning

import "context"

// Scanner wraps the external services that turn a receipt photo into text.
// Neither method interprets the text; parsing belongs to the extraction package.
type Scanner interface {
	// RecognizeText transcribes a receipt image/PDF, one receipt line per output line
	RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// SummarizeItems asks a language model to list the purchased items in receiptText as JSON
	SummarizeItems(ctx context.Context, receiptText string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
