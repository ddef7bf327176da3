// Package validation checks untrusted transliteration input before it reaches
// the parser: path safety, size limits, encoding and compression sniffing.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on accepted input (CWE-400).
const (
	// MaxSourceSize is the largest transliteration accepted after decompression (8 MiB).
	MaxSourceSize = 8 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxLineLength caps a single line handed to the tokenizer over the API.
	MaxLineLength = 64 << 10
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrTooLarge         = errors.New("source too large")
	ErrNotUTF8          = errors.New("source is not valid UTF-8")
	ErrBinary           = errors.New("source looks binary")
)

// ValidatePath checks a user-supplied file path for length and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// SanitizeArchivePath cleans the name of an archive member and rejects names
// that would escape the archive root.
func SanitizeArchivePath(name string) (string, error) {
	if err := ValidatePath(name); err != nil {
		return "", err
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return filepath.ToSlash(clean), nil
}

// ValidateSource checks decoded transliteration bytes.
func ValidateSource(data []byte) error {
	if len(data) > MaxSourceSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), MaxSourceSize)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return ErrBinary
	}
	if !utf8.Valid(data) {
		return ErrNotUTF8
	}
	return nil
}

// ValidateLine checks a single line handed to the tokenizer.
func ValidateLine(line string) error {
	if len(line) > MaxLineLength {
		return fmt.Errorf("%w: line of %d bytes exceeds %d", ErrTooLarge, len(line), MaxLineLength)
	}
	if !utf8.ValidString(line) {
		return ErrNotUTF8
	}
	return nil
}

// Compression identifies how a source file is wrapped.
type Compression string

const (
	CompressionNone  Compression = "none"
	CompressionGzip  Compression = "gzip"
	CompressionXZ    Compression = "xz"
	CompressionTar   Compression = "tar"
	CompressionTarXZ Compression = "tar.xz"
	CompressionTarGZ Compression = "tar.gz"
)

// IsArchive reports whether c wraps several files.
func (c Compression) IsArchive() bool {
	return c == CompressionTar || c == CompressionTarXZ || c == CompressionTarGZ
}

var magicBytes = []struct {
	kind   Compression
	magic  []byte
	offset int
}{
	{CompressionTar, []byte("ustar"), 257},
	{CompressionGzip, []byte{0x1f, 0x8b}, 0},
	{CompressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, 0},
}

// DetectCompression inspects the leading bytes of a file (512 are enough) and
// its name. Magic bytes win; the name only distinguishes a compressed tar from
// a compressed single file.
func DetectCompression(head []byte, name string) Compression {
	lower := strings.ToLower(name)
	tarName := strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".tar.gz") ||
		strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".txz")

	for _, sig := range magicBytes {
		if sig.offset+len(sig.magic) > len(head) || !bytes.Equal(head[sig.offset:sig.offset+len(sig.magic)], sig.magic) {
			continue
		}
		switch {
		case sig.kind == CompressionXZ && tarName:
			return CompressionTarXZ
		case sig.kind == CompressionGzip && tarName:
			return CompressionTarGZ
		default:
			return sig.kind
		}
	}
	return CompressionNone
}
