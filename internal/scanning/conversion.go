package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// heicBrands are the ftyp brands used by HEIC/HEIF files
var heicBrands = map[string]bool{"heic": true, "heif": true, "mif1": true, "msf1": true}

// toPNG converts a receipt upload (PDF, HEIC, JPEG, GIF or PNG) into PNG bytes.
// PNG input is returned unchanged.
func toPNG(data []byte, contentType string) ([]byte, error) {
	mimeType := normalizeMimeType(contentType)

	var (
		img image.Image
		err error
	)
	switch {
	case mimeType == "application/pdf":
		img, err = renderFirstPage(data)
	case isHEIC(data, mimeType):
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	case mimeType == "image/png":
		return data, nil
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("decoding image (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// renderFirstPage rasterizes page one of a PDF; receipts are single page
func renderFirstPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

func normalizeMimeType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		return "image/jpeg"
	}
	return mimeType
}

// isHEIC checks the MIME type and the ftyp box at offset 4
func isHEIC(data []byte, mimeType string) bool {
	if strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif") {
		return true
	}
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	return heicBrands[string(data[8:12])]
}
