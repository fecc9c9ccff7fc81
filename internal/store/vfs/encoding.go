package vfs

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrBinary indicates file content that is not text.
var ErrBinary = errors.New("binary content")

// DecodeText turns file content into document text. A UTF-8 or UTF-16 byte
// order mark selects the encoding and is dropped; content without one is
// read as UTF-8.
func DecodeText(content []byte) (string, error) {
	if IsBinary(content) && !hasUTF16BOM(content) {
		return "", ErrBinary
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, content)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

// IsBinary attempts to detect if content is binary (not text).
// Uses heuristics: presence of null bytes, high ratio of non-printable characters.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	sample := content[:min(len(content), 8192)]

	// Null bytes are a strong indicator of binary
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			nonText++
		}
	}
	return float64(nonText)/float64(len(sample)) > 0.1
}

func hasUTF16BOM(content []byte) bool {
	return bytes.HasPrefix(content, []byte{0xFF, 0xFE}) || bytes.HasPrefix(content, []byte{0xFE, 0xFF})
}
