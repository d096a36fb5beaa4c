package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	maxUploadSize = int64(50 << 20) // high-resolution phone photos
	maxTextSize   = int64(1 << 20)
)

// receiptResponse adds the derived totals to a receipt
type receiptResponse struct {
	*Receipt
	Total         decimal.Decimal `json:"total"`
	SelectedTotal decimal.Decimal `json:"selected_total"`
}

func newReceiptResponse(r *Receipt) receiptResponse {
	return receiptResponse{
		Receipt:       r,
		Total:         r.Total(),
		SelectedTotal: r.SelectedTotal(),
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeLookupError maps a service error for a single receipt to a status code
func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, "Receipt not found", http.StatusNotFound)
		return
	}
	slog.Error("Error loading receipt", "error", err)
	writeError(w, "Internal server error", http.StatusInternalServerError)
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListReceipts returns a list of all receipts
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]receiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		response = append(response, newReceiptResponse(receipt))
	}
	writeJSON(w, http.StatusOK, response)
}

// handleUploadReceipt scans an uploaded receipt image
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromExt(header.Filename)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	receipt, err := s.service.ScanReceipt(r.Context(), header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		if errors.Is(err, ErrScan) {
			writeError(w, "Could not read the receipt. Please try again with a clearer image.", http.StatusBadGateway)
			return
		}
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, newReceiptResponse(receipt))
}

func contentTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleParseText runs the OCR path over posted text
func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextSize)).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.service.ParseText(req.Text)
	if err != nil {
		slog.Error("Error parsing receipt text", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, newReceiptResponse(receipt))
}

// handleParseResponse runs the model path over a posted model answer
func (s *Server) handleParseResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextSize)).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.service.ParseResponse(req.Response)
	if err != nil {
		slog.Error("Error parsing model response", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, newReceiptResponse(receipt))
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReceiptResponse(receipt))
}

// handleGetReceiptFile returns the image a receipt was scanned from
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptImage(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNoImage) {
			writeError(w, "Receipt has no image", http.StatusNotFound)
			return
		}
		writeLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleGetItems returns the canonical items JSON
func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.CanonicalItems(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleGetSummary returns the shareable text of the selected items
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, summary)
}

type selectionRequest struct {
	Selected *bool `json:"selected"`
}

func decodeSelection(w http.ResponseWriter, r *http.Request) (bool, error) {
	var req selectionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextSize)).Decode(&req); err != nil {
		return false, err
	}
	if req.Selected == nil {
		return false, errors.New("selected is required")
	}
	return *req.Selected, nil
}

// handleSelectItem sets the selected flag of one item
func (s *Server) handleSelectItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, "Item index must be a number", http.StatusBadRequest)
		return
	}
	selected, err := decodeSelection(w, r)
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.service.SetItemSelected(r.PathValue("id"), index, selected)
	if err != nil {
		if errors.Is(err, ErrItemIndex) {
			writeError(w, "Item not found", http.StatusNotFound)
			return
		}
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReceiptResponse(receipt))
}

// handleSelectAll selects or clears every item
func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	selected, err := decodeSelection(w, r)
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.service.SetAllSelected(r.PathValue("id"), selected)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReceiptResponse(receipt))
}

// handleDeleteReceipt deletes a receipt
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(r.PathValue("id")); err != nil {
		writeLookupError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
