package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultFilename   = "upload.pdf"
	maxFilenameLength = 200
)

var (
	pdfMagic         = []byte("%PDF-")
	unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// validatePDF rejects oversized uploads and anything without a PDF header.
func validatePDF(content []byte, maxSizeMB int) error {
	if maxSizeMB > 0 && len(content) > maxSizeMB*1024*1024 {
		return &ValidationError{Message: fmt.Sprintf("File exceeds maximum size of %dMB", maxSizeMB)}
	}
	if !bytes.HasPrefix(content, pdfMagic) {
		return &ValidationError{Message: "File does not appear to be a valid PDF"}
	}
	return nil
}

// sanitizeFilename strips directories and replaces characters outside
// [a-zA-Z0-9._-] so the name is safe inside an object path.
func sanitizeFilename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	name := unsafeFilenameRe.ReplaceAllString(filename, "_")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	if name == "" {
		return defaultFilename
	}
	return name
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
