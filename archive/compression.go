package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/jobscan/errs"
	"github.com/arloliu/jobscan/format"
)

// dataFile is one on-disk variant of a job's metric document.
type dataFile struct {
	name string
	typ  format.CompressionType
}

// dataFiles is the probe order for job data. Gzip before plain mirrors how
// archives are written in practice: documents start out plain and are
// compressed in place later, so when both exist the compressed one is the
// authoritative survivor. The newer variants follow.
var dataFiles = []dataFile{
	{name: "data.json.gz", typ: format.CompressionGzip},
	{name: "data.json", typ: format.CompressionNone},
	{name: "data.json.zst", typ: format.CompressionZstd},
	{name: "data.json.lz4", typ: format.CompressionLZ4},
}

// TypeForPath infers the compression variant from a file name extension.
// Unrecognized extensions mean an uncompressed document.
func TypeForPath(path string) format.CompressionType {
	switch filepath.Ext(path) {
	case ".gz":
		return format.CompressionGzip
	case ".zst":
		return format.CompressionZstd
	case ".lz4":
		return format.CompressionLZ4
	default:
		return format.CompressionNone
	}
}

// OpenFile opens a single document file outside any archive layout,
// decompressing according to its extension.
func OpenFile(path string) (io.ReadCloser, error) {
	return Open(path, TypeForPath(path))
}

// Open opens path and returns a stream of its decompressed content. The
// caller must close the returned reader, which also closes the file.
//
// Returns:
//   - io.ReadCloser: Decompressed document stream
//   - error: errs.ErrUnsupportedCompression for a typ without a registered
//     decompressor, or the underlying open/decompressor error
func Open(path string, typ format.CompressionType) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rc, err := decompress(f, typ)
	if err != nil {
		f.Close()
		return nil, err
	}

	return rc, nil
}

// decompress wraps an open file with the decoder for its compression type.
// On error the caller still owns f.
func decompress(f *os.File, typ format.CompressionType) (io.ReadCloser, error) {
	switch typ {
	case format.CompressionNone:
		return f, nil
	case format.CompressionGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip reader for %s: %w", f.Name(), err)
		}

		return &stream{r: gz, close: func() error {
			return errors.Join(gz.Close(), f.Close())
		}}, nil
	case format.CompressionZstd:
		return newZstdReadCloser(f)
	case format.CompressionLZ4:
		return &stream{r: lz4.NewReader(f), close: f.Close}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, typ)
	}
}

// stream couples a decompressing reader with the cleanup of the resources
// backing it.
type stream struct {
	r     io.Reader
	close func() error
}

func (s *stream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *stream) Close() error {
	return s.close()
}
