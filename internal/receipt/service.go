package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-splitter/internal/extraction"
	"github.com/zombor/receipt-splitter/internal/scanning"
)

var (
	// ErrScan wraps failures of the external OCR or model services
	ErrScan = errors.New("scanning failed")
	// ErrNoImage is returned for receipts created from text only
	ErrNoImage = errors.New("receipt has no image")
)

// Mode selects how recognized receipt text becomes items
type Mode string

const (
	// ModeOCR classifies the recognized lines and pattern-matches items
	ModeOCR Mode = "ocr"
	// ModeModel asks the language model for JSON and normalizes its answer
	ModeModel Mode = "model"
)

// ParseMode validates a mode name from configuration
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOCR, ModeModel:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode %q: want %q or %q", s, ModeOCR, ModeModel)
	}
}

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	mode        Mode
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, mode Mode) *Service {
	return NewServiceWithDeps(db, scanner, storage, mode, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, mode Mode, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		mode:        mode,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	filenameJunkRe  = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaceRe = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and shortens long phone-generated names
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = filenameJunkRe.ReplaceAllString(base, "")
	base = filenameSpaceRe.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	ext = filenameJunkRe.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	ext = filenameSpaceRe.ReplaceAllString(ext, "")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// ScanReceipt stores the image, recognizes its text, extracts the items and
// saves the receipt. A receipt with no items is still saved.
func (s *Service) ScanReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Receipt, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	text, err := s.scanner.RecognizeText(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to recognize receipt text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.discardImage(savedPath)
		return nil, fmt.Errorf("%w: recognizing text: %w", ErrScan, err)
	}

	items, err := s.itemsFromText(ctx, text)
	if err != nil {
		slog.Error("Failed to summarize receipt items", "filename", filename, "error", err)
		s.discardImage(savedPath)
		return nil, fmt.Errorf("%w: summarizing items: %w", ErrScan, err)
	}

	receipt := assembleAt(now, items, text, data)
	receipt.ID = id
	receipt.ImageFile = savedPath
	receipt.ContentType = contentType

	if err := s.db.SaveReceipt(receipt); err != nil {
		s.discardImage(savedPath)
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	slog.Info("Scanned receipt", "id", id, "mode", s.mode, "items", len(receipt.Items))
	return receipt, nil
}

// discardImage removes an image saved by a scan that did not complete
func (s *Service) discardImage(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to remove image of failed scan", "filename", name, "error", err)
	}
}

// itemsFromText runs the configured extraction path over recognized text
func (s *Service) itemsFromText(ctx context.Context, text string) ([]extraction.Item, error) {
	if s.mode != ModeModel {
		return extraction.Extract(extraction.Classify(extraction.SplitLines(text))), nil
	}

	raw, err := s.scanner.SummarizeItems(ctx, text)
	if err != nil {
		return nil, err
	}
	items, tier := extraction.NormalizeTier(raw)
	if tier == extraction.TierNone {
		slog.Warn("Model response could not be decoded", "response_size", len(raw))
	}
	return items, nil
}

// ParseText runs the OCR path over text recognized elsewhere
func (s *Service) ParseText(text string) (*Receipt, error) {
	items := extraction.Extract(extraction.Classify(extraction.SplitLines(text)))
	return s.saveParsed(items, text)
}

// ParseResponse runs the model path over a language-model answer produced elsewhere
func (s *Service) ParseResponse(raw string) (*Receipt, error) {
	items, tier := extraction.NormalizeTier(raw)
	slog.Debug("Normalized model response", "tier", tier, "items", len(items))
	return s.saveParsed(items, raw)
}

func (s *Service) saveParsed(items []extraction.Item, rawText string) (*Receipt, error) {
	receipt := assembleAt(s.timeSource.Now(), items, rawText, nil)
	receipt.ID = s.idGenerator.Generate()

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}
	return receipt, nil
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts, newest first
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].Timestamp.After(receipts[j].Timestamp)
	})
	return receipts, nil
}

// DeleteReceipt removes a receipt and its image
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	if receipt.ImageFile != "" {
		if err := s.storage.Delete(receipt.ImageFile); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", receipt.ImageFile, "error", err)
		}
	}

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptImage retrieves the image a receipt was scanned from
func (s *Service) GetReceiptImage(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}
	if receipt.ImageFile == "" {
		return nil, "", ErrNoImage
	}

	data, err := s.storage.Get(receipt.ImageFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}
	return data, receipt.ContentType, nil
}

// SetItemSelected toggles one item of a receipt
func (s *Service) SetItemSelected(id string, index int, selected bool) (*Receipt, error) {
	receipt, err := s.db.UpdateReceipt(id, func(r *Receipt) error {
		return r.SetSelected(index, selected)
	})
	if err != nil {
		return nil, fmt.Errorf("selecting item: %w", err)
	}
	return receipt, nil
}

// SetAllSelected selects or clears every item of a receipt
func (s *Service) SetAllSelected(id string, selected bool) (*Receipt, error) {
	receipt, err := s.db.UpdateReceipt(id, func(r *Receipt) error {
		r.SetAllSelected(selected)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("selecting items: %w", err)
	}
	return receipt, nil
}

// Summary returns the shareable text for a receipt's selected items
func (s *Service) Summary(id string) (string, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return "", err
	}
	return receipt.Summary(), nil
}

// CanonicalItems returns the receipt's items as {"items":[...]} JSON
func (s *Service) CanonicalItems(id string) ([]byte, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return nil, err
	}
	return extraction.MarshalItems(receipt.Items)
}
