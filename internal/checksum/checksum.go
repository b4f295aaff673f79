package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const bufferSize = 64 * 1024 // 64KB buffer

// Hasher computes content digests. It exists so callers can substitute a
// failing or counting implementation in tests.
type Hasher interface {
	Digest(path string) (string, error)
}

// SHA256Hasher is the Hasher used for every file in a run.
type SHA256Hasher struct{}

// Digest implements Hasher.
func (SHA256Hasher) Digest(path string) (string, error) {
	return CalculateFileSHA256(path)
}

// HasherFunc adapts a function to the Hasher interface.
type HasherFunc func(path string) (string, error)

// Digest implements Hasher.
func (f HasherFunc) Digest(path string) (string, error) {
	return f(path)
}

// CalculateFileSHA256 calculates the SHA-256 digest of a file and returns it
// hex encoded. The file is streamed, so memory use does not depend on its size.
func CalculateFileSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return CalculateSHA256(file)
}

// CalculateSHA256 calculates the SHA-256 digest of everything read from r.
// A read error mid-stream is returned; no partial digest is produced.
func CalculateSHA256(r io.Reader) (string, error) {
	hash := sha256.New()
	buffer := make([]byte, bufferSize)

	for {
		n, err := r.Read(buffer)
		if n > 0 {
			if _, err := hash.Write(buffer[:n]); err != nil {
				return "", fmt.Errorf("write to hash: %w", err)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
