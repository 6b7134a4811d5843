package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
)

// WriteFile fills the target path with the requested number of bytes. A
// size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTrack writes an MP3-shaped file carrying ID3 title and album tags so
// library scans can read them back. The audio payload is a single dummy
// MPEG frame header plus padding.
func WriteTrack(t testing.TB, path, title, album string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	payload := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 412)...)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tag for %s: %v", path, err)
	}
	defer tag.Close()

	tag.SetTitle(title)
	tag.SetAlbum(album)
	if err := tag.Save(); err != nil {
		t.Fatalf("save tag for %s: %v", path, err)
	}
}
