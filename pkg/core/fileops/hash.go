package fileops

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// osdbHashChunkSize is the size of the chunk read from the start and end of the file.
	osdbHashChunkSize = 65536 // 64 * 1024
)

// MinHashableSize is the smallest file CalculateOSDbHash accepts.
const MinHashableSize = osdbHashChunkSize * 2

// checksumBuffer sums the buffer as 64-bit little-endian words.
func checksumBuffer(buf []byte) (sum uint64) {
	for i := 0; i+8 <= len(buf); i += 8 {
		sum += binary.LittleEndian.Uint64(buf[i : i+8])
	}
	return
}

// CalculateOSDbHash calculates the OpenSubtitles movie hash of a video file:
// file size plus the word sums of its first and last 64 KiB.
// See http://trac.opensubtitles.org/projects/opensubtitles/wiki/HashSourceCodes
func CalculateOSDbHash(filePath string) (hash string, byteSize int64, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		err = fmt.Errorf("failed to open file for OSDb hashing '%s': %w", filePath, err)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		err = fmt.Errorf("failed to stat file '%s': %w", filePath, err)
		return
	}

	byteSize = stat.Size()
	if byteSize < MinHashableSize {
		err = fmt.Errorf("file '%s' is too small for OSDb hashing (size: %d)", filePath, byteSize)
		return
	}

	startBuf := make([]byte, osdbHashChunkSize)
	if _, err = io.ReadFull(file, startBuf); err != nil {
		err = fmt.Errorf("failed to read start chunk from '%s': %w", filePath, err)
		return
	}

	endBuf := make([]byte, osdbHashChunkSize)
	if _, err = file.ReadAt(endBuf, byteSize-osdbHashChunkSize); err != nil {
		err = fmt.Errorf("failed to read end chunk from '%s': %w", filePath, err)
		return
	}

	// uint64 overflow is part of the algorithm
	finalHash := uint64(byteSize) + checksumBuffer(startBuf) + checksumBuffer(endBuf)

	hash = fmt.Sprintf("%016x", finalHash)
	return
}
