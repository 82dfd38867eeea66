// Package archive packs a run directory into a single .tar.zst file.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Ext is the conventional extension of a run archive.
const Ext = ".tar.zst"

// DefaultPath returns <runDir>.tar.zst next to the run directory.
func DefaultPath(runDir string) string {
	return filepath.Clean(runDir) + Ext
}

// Create writes every regular file under runDir to dst as a zstd-compressed
// tar stream. Entry names are relative to runDir, slash-separated, in lexical
// order. dst itself is skipped when it lies inside runDir. It returns the
// number of files archived.
func Create(runDir, dst string) (int, error) {
	info, err := os.Stat(runDir)
	if err != nil {
		return 0, fmt.Errorf("reading run directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", runDir)
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return 0, fmt.Errorf("creating zstd writer: %w", err)
	}
	tw := tar.NewWriter(enc)

	files := 0
	walkErr := filepath.WalkDir(runDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if abs, _ := filepath.Abs(path); abs == absDst {
			return nil
		}
		rel, err := filepath.Rel(runDir, path)
		if err != nil || rel == "." {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uid, hdr.Gid, hdr.Uname, hdr.Gname = 0, 0, "", ""

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(tw, src); err != nil {
			return fmt.Errorf("archiving %s: %w", rel, err)
		}
		files++
		return nil
	})
	if walkErr != nil {
		return 0, walkErr
	}

	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("finishing tar stream: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("finishing zstd stream: %w", err)
	}
	return files, f.Close()
}

// Extract unpacks an archive made by Create into dstDir. Entries that would
// land outside dstDir are rejected.
func Extract(src, dstDir string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	root := filepath.Clean(dstDir)
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		target := filepath.Join(root, filepath.FromSlash(hdr.Name))
		if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		}
	}
}

func writeEntry(path string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
