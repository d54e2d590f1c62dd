package security

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Validation failures returned by ValidatePDF
var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file exceeds the maximum upload size")
	ErrNotPDFExtension  = errors.New("only .pdf files are accepted")
	ErrContentNotPDF    = errors.New("file content is not a PDF (potential file spoofing detected)")
	ErrMIMENotAllowed   = errors.New("MIME type not allowed")
	ErrInvalidFilename  = errors.New("invalid file name")
	pdfMagic            = []byte{0x25, 0x50, 0x44, 0x46} // %PDF
	allowedPDFMIMETypes = map[string]bool{
		"application/pdf":   true,
		"application/x-pdf": true,
	}
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        error
}

// ValidatePDF performs layered validation of an uploaded credential:
// size bounds, extension whitelist, magic bytes and sniffed MIME type.
// maxBytes <= 0 disables the size check.
func ValidatePDF(filename string, data []byte, maxBytes int64) FileValidationResult {
	var result FileValidationResult

	if len(data) == 0 {
		result.Error = ErrEmptyFile
		return result
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		result.Error = fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, maxBytes)
		return result
	}

	name := SanitizeFilename(filename)
	if name == "" {
		result.Error = ErrInvalidFilename
		return result
	}

	result.Extension = strings.ToLower(filepath.Ext(name))
	if result.Extension != ".pdf" {
		result.Error = ErrNotPDFExtension
		return result
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		result.Error = ErrContentNotPDF
		return result
	}

	mime := mimetype.Detect(data)
	result.DetectedMIME = mime.String()
	if !allowedPDFMIMETypes[strings.SplitN(mime.String(), ";", 2)[0]] {
		result.Error = fmt.Errorf("%w: %s", ErrMIMENotAllowed, mime.String())
		return result
	}

	result.Valid = true
	return result
}

// SanitizeFilename strips directory components and control characters.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, base)
}
