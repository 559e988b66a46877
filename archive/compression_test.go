package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jobscan/errs"
	"github.com/arloliu/jobscan/format"
)

func TestTypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want format.CompressionType
	}{
		{"data.json", format.CompressionNone},
		{"data.json.gz", format.CompressionGzip},
		{"data.json.zst", format.CompressionZstd},
		{"data.json.lz4", format.CompressionLZ4},
		{"/archive/fritz/0/042/1000/data.json.gz", format.CompressionGzip},
		{"data", format.CompressionNone},
		{"data.zstx", format.CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForPath(tt.path))
		})
	}
}

func TestOpenFile_Variants(t *testing.T) {
	names := map[format.CompressionType]string{
		format.CompressionNone: "data.json",
		format.CompressionGzip: "data.json.gz",
		format.CompressionZstd: "data.json.zst",
		format.CompressionLZ4:  "data.json.lz4",
	}

	for typ, name := range names {
		t.Run(typ.String(), func(t *testing.T) {
			dir := t.TempDir()
			writeDataFile(t, dir, typ, []byte(testDoc))

			rc, err := OpenFile(filepath.Join(dir, name))
			require.NoError(t, err)

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, []byte(testDoc), got)
		})
	}
}

func TestOpen_UnsupportedCompression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0o644))

	_, err := Open(path, format.CompressionType(0xff))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "data.json"), format.CompressionNone)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_CorruptGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json.gz")
	require.NoError(t, os.WriteFile(path, []byte("this is not a gzip stream"), 0o644))

	_, err := OpenFile(path)
	require.Error(t, err)
}
