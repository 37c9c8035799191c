// Package bundle archives a results directory as a zstd-compressed tarball.
package bundle

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Write archives every regular file under root into dest. dest itself is
// skipped when it lives inside root. It returns the number of archived files.
func Write(root, dest string) (int, error) {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return 0, fmt.Errorf("results directory %q is not readable", root)
	}
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return 0, err
	}
	tmpAbs, err := filepath.Abs(tmp.Name())
	if err != nil {
		_ = tmp.Close()
		return 0, err
	}
	defer func() { _ = os.Remove(tmpAbs) }()

	n, err := writeArchive(tmp, root, func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && (abs == destAbs || abs == tmpAbs)
	})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	return n, os.Rename(tmpAbs, dest)
}

// writeArchive streams a tar of root through a zstd encoder into w.
func writeArchive(w io.Writer, root string, skip func(string) bool) (int, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return 0, err
	}
	tw := tar.NewWriter(enc)

	count := 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || skip(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if err := addFile(tw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		count++
		return nil
	})

	err = errors.Join(walkErr, tw.Close(), enc.Close())
	if err != nil {
		return 0, fmt.Errorf("write bundle: %w", err)
	}
	return count, nil
}

func addFile(tw *tar.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// List returns the file names stored in a bundle, in archive order.
func List(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var names []string
	tr := tar.NewReader(dec)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w", err)
		}
		names = append(names, header.Name)
	}
}
