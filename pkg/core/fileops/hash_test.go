package fileops

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOSDbHash_ZeroFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zeros.mkv")
	size := int64(MinHashableSize + 4096)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))

	hash, gotSize, err := CalculateOSDbHash(path)
	require.NoError(t, err)
	assert.Equal(t, size, gotSize)
	// all chunks sum to zero, leaving only the size
	assert.Equal(t, fmt.Sprintf("%016x", size), hash)
}

func TestCalculateOSDbHash_SumsHeadAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marked.mkv")
	data := make([]byte, MinHashableSize)
	binary.LittleEndian.PutUint64(data[0:8], 1)
	binary.LittleEndian.PutUint64(data[len(data)-8:], 2)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	hash, _, err := CalculateOSDbHash(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%016x", uint64(MinHashableSize)+3), hash)
	assert.Len(t, hash, 16)
}

func TestCalculateOSDbHash_TooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.mkv")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o644))

	_, _, err := CalculateOSDbHash(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}

func TestCalculateOSDbHash_Missing(t *testing.T) {
	_, _, err := CalculateOSDbHash(filepath.Join(t.TempDir(), "nope.mkv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
