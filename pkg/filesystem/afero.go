package filesystem

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/kmoddb/pkg/types"
	"github.com/spf13/afero"
)

// aferoFS implements types.FS using afero
type aferoFS struct {
	fs afero.Fs
}

// NewAferoFS creates a new afero filesystem implementation
func NewAferoFS(fs afero.Fs) types.FS {
	return &aferoFS{fs: fs}
}

// symlinkPayloadPrefix marks a file as a simulated symlink. Afero's
// MemMapFs has no symlink support and does not preserve os.ModeSymlink
// on stored files, so the payload itself has to identify the link.
const symlinkPayloadPrefix = "symlink\x00"

// WriteSymlink simulates a symlink on filesystems without symlink
// support (afero's MemMapFs) by writing the target behind a sentinel
// prefix. Readlink, Resolve and Stat understand this shape; regular
// file content never collides with it.
func WriteSymlink(fs afero.Fs, target, name string) error {
	return afero.WriteFile(fs, name, []byte(symlinkPayloadPrefix+target), 0777)
}

// Stat follows simulated symlinks, like os.Stat does for real ones.
func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	resolved, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}
	return a.fs.Stat(resolved)
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	resolved, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := a.fs.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.fs, resolved)
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}
	dirEntries := make([]fs.DirEntry, len(entries))
	for i, entry := range entries {
		dirEntries[i] = fs.FileInfoToDirEntry(entry)
	}
	return dirEntries, nil
}

func (a *aferoFS) Readlink(name string) (string, error) {
	target, ok, err := a.readlinkPayload(name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return target, nil
}

func (a *aferoFS) Resolve(name string) (string, error) {
	return a.resolve(filepath.Clean(name), 0)
}

func (a *aferoFS) resolve(name string, depth int) (string, error) {
	if depth > 8 {
		return "", &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrInvalid}
	}
	info, err := a.fs.Stat(name)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return name, nil
	}
	target, ok, err := a.readlinkPayload(name)
	if err != nil {
		return "", err
	}
	if !ok {
		return name, nil
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(name), target)
	}
	return a.resolve(filepath.Clean(target), depth+1)
}

// readlinkPayload reads name and reports whether it is a simulated
// symlink, returning the link target when it is.
func (a *aferoFS) readlinkPayload(name string) (string, bool, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}
	content, err := afero.ReadFile(a.fs, name)
	if err != nil {
		return "", false, err
	}
	target, ok := strings.CutPrefix(string(content), symlinkPayloadPrefix)
	if !ok {
		return "", false, nil
	}
	return target, true, nil
}

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	// Does not follow simulated links; an Lstat caller only needs the
	// entry itself to exist.
	return a.fs.Stat(name)
}
