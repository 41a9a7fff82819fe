// Package fileutil copies scene files into the clips directory layout.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyVerified copies src to dst through a temporary file in dst's directory,
// checking size and SHA-256 before renaming it into place. dst is never left
// half-written. It returns the hex digest of the copied bytes.
func CopyVerified(src, dst string) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return "", fmt.Errorf("source %s is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return fail(err)
	}
	if written != srcInfo.Size() {
		return fail(fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written))
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		return fail(fmt.Errorf("copy hash mismatch: file corrupted during copy"))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return fmt.Sprintf("%x", dstHasher.Sum(nil)), nil
}

// SameFile reports whether a and b name the same existing file.
func SameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
