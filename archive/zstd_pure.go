//go:build !cgo

package archive

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// newZstdReadCloser decodes with the pure Go Zstandard implementation on
// builds without cgo.
func newZstdReadCloser(f *os.File) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	return &stream{r: dec, close: func() error {
		dec.Close()
		return f.Close()
	}}, nil
}
