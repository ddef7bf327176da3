// Package source reads transliteration files from disk or uploads. Files may
// be plain text, xz or gzip compressed, or tar archives holding many .atf
// members.
package source

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/TabletATF/core/errors"
	"github.com/FocuswithJustin/TabletATF/internal/validation"
)

// Extension is the suffix archive members must carry to be read.
const Extension = ".atf"

// File is one decoded transliteration file.
type File struct {
	// Name is the path on disk or the archive member name.
	Name string `json:"name"`
	Text string `json:"-"`
}

// ReadFile reads path and returns every transliteration file it contains.
func ReadFile(p string) ([]File, error) {
	if err := validation.ValidatePath(p); err != nil {
		return nil, &errors.ValidationError{Field: "path", Message: err.Error(), Err: err}
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.NewIO("open", p, err)
	}
	defer f.Close()
	return Read(f, p)
}

// Read decodes r. name is used for archive detection and for the returned
// File when r holds a single text.
func Read(r io.Reader, name string) ([]File, error) {
	br := bufio.NewReaderSize(r, 1024)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.NewIO("read", name, err)
	}

	kind := validation.DetectCompression(head, name)
	body, err := decompress(br, kind)
	if err != nil {
		return nil, &errors.ParseError{Format: string(kind), Path: name, Message: "bad compressed stream", Err: err}
	}

	if kind.IsArchive() {
		return readTar(tar.NewReader(body), name)
	}

	text, err := readLimited(body, name)
	if err != nil {
		return nil, err
	}
	return []File{{Name: trimCompressionSuffix(name), Text: text}}, nil
}

func decompress(r io.Reader, kind validation.Compression) (io.Reader, error) {
	switch kind {
	case validation.CompressionXZ, validation.CompressionTarXZ:
		return xz.NewReader(r)
	case validation.CompressionGzip, validation.CompressionTarGZ:
		return gzip.NewReader(r)
	default:
		return r, nil
	}
}

// readLimited reads at most MaxSourceSize decoded bytes, so compressed bombs
// stop early.
func readLimited(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, validation.MaxSourceSize+1))
	if err != nil {
		return "", errors.NewIO("read", name, err)
	}
	if err := validation.ValidateSource(data); err != nil {
		return "", &errors.ValidationError{Field: name, Message: err.Error(), Err: err}
	}
	return string(data), nil
}

// Visitor is called for each .atf member. Return true to stop.
type Visitor func(f File) (stop bool, err error)

// Iterate walks the .atf members of a tar stream.
func Iterate(tr *tar.Reader, archive string, visit Visitor) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errors.ParseError{Format: "tar", Path: archive, Message: "read header", Err: err}
		}
		if hdr.Typeflag != tar.TypeReg || !strings.EqualFold(path.Ext(hdr.Name), Extension) {
			continue
		}
		name, err := validation.SanitizeArchivePath(hdr.Name)
		if err != nil {
			return &errors.ValidationError{Field: "member", Message: fmt.Sprintf("%s: %v", hdr.Name, err), Err: err}
		}
		text, err := readLimited(tr, name)
		if err != nil {
			return err
		}
		stop, err := visit(File{Name: name, Text: text})
		if err != nil || stop {
			return err
		}
	}
}

func readTar(tr *tar.Reader, archive string) ([]File, error) {
	var files []File
	total := 0
	err := Iterate(tr, archive, func(f File) (bool, error) {
		total += len(f.Text)
		if total > validation.MaxSourceSize*16 {
			return true, &errors.ValidationError{Field: archive, Message: "archive expands beyond limit", Err: validation.ErrTooLarge}
		}
		files = append(files, f)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

var compressionSuffixes = []string{".xz", ".gz"}

func trimCompressionSuffix(name string) string {
	for _, s := range compressionSuffixes {
		if strings.HasSuffix(strings.ToLower(name), s) {
			return name[:len(name)-len(s)]
		}
	}
	return name
}

// Compress writes text as a single xz stream. It is the inverse of Read for
// plain files and is used when exporting corpora.
func Compress(w io.Writer, text string) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("xz writer: %w", err)
	}
	if _, err := io.Copy(xw, bytes.NewReader([]byte(text))); err != nil {
		xw.Close()
		return fmt.Errorf("xz write: %w", err)
	}
	return xw.Close()
}
