package indexing

import (
	"bytes"
	"context"
	"errors"
	"os"

	mlerrors "github.com/standardbeagle/mapperlink/internal/errors"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"
)

// ContentReader returns the text of a candidate file
type ContentReader interface {
	ReadText(ctx context.Context, uri string) (string, error)
}

// binarySniffBytes is how much of a file is checked for NUL bytes
const binarySniffBytes = 8 * 1024

var errBinaryContent = errors.New("binary content")

// FileReader reads file:// URIs from disk
type FileReader struct {
	maxFileSize int64
}

// NewFileReader creates a reader that rejects files above maxFileSize
// bytes. Zero disables the limit.
func NewFileReader(maxFileSize int64) *FileReader {
	return &FileReader{maxFileSize: maxFileSize}
}

// ReadText reads the file behind uri. Failures are *errors.FileError.
func (fr *FileReader) ReadText(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := pathutil.FromURI(uri)
	if err != nil {
		return "", mlerrors.NewFileError("resolve", uri, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", mlerrors.NewFileError("stat", path, err)
	}
	if fr.maxFileSize > 0 && info.Size() > fr.maxFileSize {
		return "", mlerrors.NewFileTooLargeError(path, info.Size(), fr.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", mlerrors.NewFileError("read", path, err)
	}

	sniff := data
	if len(sniff) > binarySniffBytes {
		sniff = sniff[:binarySniffBytes]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return "", mlerrors.NewFileError("read", path, errBinaryContent)
	}

	// UTF-8 BOM would shift every column on the first line
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return string(data), nil
}
