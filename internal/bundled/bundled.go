// Package bundled ships a small default language-identification model inside
// the binary and materializes it on disk for engines that load from a path.
//
// lid.mini.bin.gz is a gzip-compressed fastText (v12) supervised model:
// dim 4, softmax loss, minn 2, maxn 3, 64 buckets, 40 words and the labels
// __label__en, __label__fr, __label__de and __label__es.
package bundled

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"ftserve/internal/common/fsutil"
)

// Name is the logical name of the bundled model.
const Name = "lid.mini"

//go:embed lid.mini.bin.gz
var compressed []byte

// Labels lists the labels the bundled model predicts.
var Labels = []string{"__label__en", "__label__fr", "__label__de", "__label__es"}

// Open returns a reader over the decompressed model bytes.
func Open() (io.ReadCloser, error) {
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("bundled: open %s: %w", Name, err)
	}
	return zr, nil
}

// Materialize writes the decompressed model into a new owner-only (0600)
// file under dir (os.TempDir when empty) and returns its path. The caller
// owns the file. On error nothing is left behind.
func Materialize(dir string) (string, error) {
	zr, err := Open()
	if err != nil {
		return "", err
	}
	defer zr.Close()
	f, err := fsutil.CreatePrivateTemp(dir, Name+".*.bin")
	if err != nil {
		return "", fmt.Errorf("bundled: create temp file: %w", err)
	}
	path := f.Name()
	if _, err := io.Copy(f, zr); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("bundled: extract %s: %w", Name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("bundled: close %s: %w", path, err)
	}
	return path, nil
}
