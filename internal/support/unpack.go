// SPDX-License-Identifier: MPL-2.0

package support

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/satchel-build/satchel/internal/issue"
)

var (
	errUnsafePath    = errors.New("archive entry escapes the destination")
	errUnknownFormat = errors.New("unrecognized archive format")
)

// maxEntryBytes bounds a single unpacked file (2 GiB).
const maxEntryBytes = 2 << 30

// Unpack extracts a .tar.gz, .tgz, .tar or .zip archive into dest. Any failure
// is an InvalidSupportPackage entry naming the archive.
func Unpack(archive, dest string) error {
	var err error
	name := strings.ToLower(archive)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		err = unpackTar(archive, dest, true)
	case strings.HasSuffix(name, ".tar"):
		err = unpackTar(archive, dest, false)
	case strings.HasSuffix(name, ".zip"):
		err = unpackZip(archive, dest)
	default:
		err = errUnknownFormat
	}
	if err != nil {
		return issue.New(issue.InvalidSupportPackage{Filename: filepath.Base(archive)}, issue.WithCause(err))
	}
	return nil
}

func unpackTar(archive, dest string, gzipped bool) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	root, err := newExtractRoot(dest)
	if err != nil {
		return err
	}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}
		if hdr.Typeflag == tar.TypeSymlink {
			if err := root.symlink(hdr.Name, hdr.Linkname); err != nil {
				return err
			}
			continue
		}
		target, err := root.path(hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		}
	}
}

func unpackZip(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	root, err := newExtractRoot(dest)
	if err != nil {
		return err
	}
	for _, zf := range zr.File {
		target, err := root.path(zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("reading zip entry %s: %w", zf.Name, err)
		}
		err = writeEntry(target, rc, zf.Mode().Perm())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extractRoot confines extraction to dest, following the symlinks already
// written by earlier entries.
type extractRoot struct {
	dest string
	// real is dest with its own symlinks resolved.
	real string
}

func newExtractRoot(dest string) (*extractRoot, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}
	real, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return nil, err
	}
	return &extractRoot{dest: dest, real: real}, nil
}

// path returns where entry name is written. Both the lexical path and the
// location it resolves to on disk must be inside dest.
func (r *extractRoot) path(name string) (string, error) {
	target, err := entryPath(r.dest, name)
	if err != nil {
		return "", err
	}
	if err := r.confine(name, target); err != nil {
		return "", err
	}
	return target, nil
}

// symlink creates the link name -> linkname after checking that the link and
// whatever it points at stay inside dest.
func (r *extractRoot) symlink(name, linkname string) error {
	if filepath.IsAbs(linkname) || path.IsAbs(linkname) {
		return fmt.Errorf("%w: %s", errUnsafePath, linkname)
	}
	target, err := entryPath(r.dest, name)
	if err != nil {
		return err
	}
	if _, err := entryPath(r.dest, path.Join(path.Dir(name), linkname)); err != nil {
		return err
	}
	parent, err := realPath(filepath.Dir(target))
	if err != nil {
		return err
	}
	if !inside(r.real, parent) {
		return fmt.Errorf("%w: %s", errUnsafePath, name)
	}
	if err := r.confine(name, filepath.Join(parent, filepath.FromSlash(linkname))); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("creating symlink %s: %w", name, err)
	}
	return nil
}

// confine fails when p resolves outside dest.
func (r *extractRoot) confine(name, p string) error {
	real, err := realPath(p)
	if err != nil {
		return err
	}
	if !inside(r.real, real) {
		return fmt.Errorf("%w: %s", errUnsafePath, name)
	}
	return nil
}

// realPath resolves the symlinks of the longest existing prefix of p and
// appends the rest unchanged.
func realPath(p string) (string, error) {
	var rest []string
	dir := filepath.Clean(p)
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Clean(p), nil
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

// entryPath joins name onto dest and rejects names that would land outside it.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !inside(dest, target) {
		return "", fmt.Errorf("%w: %s", errUnsafePath, name)
	}
	return target, nil
}

func inside(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeEntry(target string, r io.Reader, perm os.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	n, err := io.Copy(f, io.LimitReader(r, maxEntryBytes+1))
	if err != nil {
		return fmt.Errorf("extracting %s: %w", filepath.Base(target), err)
	}
	if n > maxEntryBytes {
		return fmt.Errorf("extracting %s: entry exceeds %d bytes", filepath.Base(target), int64(maxEntryBytes))
	}
	return nil
}
