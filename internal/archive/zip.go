// Package archive packages export output into a single zip file.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/gorewood/chatmd/internal/atomicfile"
)

// ErrNoDirs is returned when Zip is called without any directory.
var ErrNoDirs = errors.New("no directories to archive")

// Zip writes every regular file under dirs into a Deflate-compressed archive
// at dest and returns the number of files added. Entry names are relative to
// the parent of each dir, so archiving "out/markdown_chats" yields entries
// like "markdown_chats/2021/March/x.md". Dirs that do not exist are skipped.
// The archive itself and in-flight temp files are never included.
func Zip(dest string, dirs ...string) (int, error) {
	if len(dirs) == 0 {
		return 0, ErrNoDirs
	}

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return 0, fmt.Errorf("resolving archive path %s: %w", dest, err)
	}

	count := 0
	err = atomicfile.WriteFunc(absDest, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, dir := range dirs {
			n, addErr := addDir(zw, dir, absDest)
			count += n
			if addErr != nil {
				_ = zw.Close()
				return addErr
			}
		}
		return zw.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("writing archive %s: %w", dest, err)
	}
	return count, nil
}

func addDir(zw *zip.Writer, dir, absDest string) (int, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", dir, err)
	}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	base := filepath.Dir(root)

	count := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() || path == absDest || atomicfile.IsTemp(path) {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("building header for %s: %w", path, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-only file

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("compressing %s: %w", name, err)
	}
	return nil
}
