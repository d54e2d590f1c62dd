package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestValidatePDF(t *testing.T) {
	t.Run("Accepts a PDF", func(t *testing.T) {
		res := ValidatePDF("cv.pdf", samplePDF, 1<<20)
		assert.True(t, res.Valid)
		assert.NoError(t, res.Error)
		assert.Equal(t, ".pdf", res.Extension)
		assert.Equal(t, "application/pdf", res.DetectedMIME)
	})

	t.Run("Rejects empty", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePDF("cv.pdf", nil, 0).Error, ErrEmptyFile)
	})

	t.Run("Rejects oversize", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePDF("cv.pdf", samplePDF, 8).Error, ErrFileTooLarge)
	})

	t.Run("Rejects other extensions", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePDF("cv.docx", samplePDF, 0).Error, ErrNotPDFExtension)
	})

	t.Run("Rejects spoofed content", func(t *testing.T) {
		png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
		assert.ErrorIs(t, ValidatePDF("cv.pdf", png, 0).Error, ErrContentNotPDF)
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cv.pdf", SanitizeFilename("../../etc/cv.pdf"))
	assert.Equal(t, "cv.pdf", SanitizeFilename(`C:\Users\me\cv.pdf`))
	assert.Equal(t, "", SanitizeFilename(".."))
	assert.Equal(t, "cv.pdf", SanitizeFilename("c\x00v.pdf"))
}

func TestUploadLimiterFailsOpenWithoutRedis(t *testing.T) {
	ul := NewUploadLimiter(nil, 0, 0)
	allowed, retry, err := ul.AllowUpload(context.Background(), "0xabc")
	assert.True(t, allowed)
	assert.Zero(t, retry)
	assert.Error(t, err)
}
