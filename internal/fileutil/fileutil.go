// Package fileutil holds the file copy helpers the local catalog sources
// share. Copies create the destination directory and never leave a partial
// file behind on failure.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile streams src to dest, creating dest's directory first. A failed
// copy removes the destination.
func CopyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

// CopyFileVerified copies like CopyFile and then re-reads the destination,
// checking that the bytes on disk carry the same size and SHA256 digest as
// the source. A mismatch removes the destination and reports an error.
func CopyFileVerified(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	srcHash := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHash))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return err
	}

	if written != info.Size() {
		_ = os.Remove(dest)
		return fmt.Errorf("copy size mismatch: source %d bytes, wrote %d", info.Size(), written)
	}
	destSum, err := hashFile(dest)
	if err != nil {
		_ = os.Remove(dest)
		return err
	}
	if !bytes.Equal(srcHash.Sum(nil), destSum) {
		_ = os.Remove(dest)
		return fmt.Errorf("copy digest mismatch for %s", filepath.Base(dest))
	}
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
