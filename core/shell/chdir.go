package shell

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// maxSymlinks bounds how many links a single directory change may follow.
const maxSymlinks = 40

// ErrTooManyLinks is reported when resolving a directory loops through
// symbolic links.
var ErrTooManyLinks = errors.New("too many levels of symbolic links")

// physicalDir resolves target against the physical directory dir the way
// chdir(2) does. Symbolic links are followed before ".." is applied, so
// "link/.." names the parent of the link's target. Every component must be a
// directory the user may search.
func physicalDir(fsys afero.Fs, dir, target string) (string, error) {
	if target == "" {
		return "", &fs.PathError{Op: "chdir", Path: target, Err: fs.ErrNotExist}
	}

	pending := target
	if !filepath.IsAbs(target) {
		pending = dir + "/" + target
	}

	resolved := "/"
	links := 0
	for pending != "" {
		name := pending
		pending = ""
		if i := strings.IndexByte(name, '/'); i >= 0 {
			name, pending = name[:i], name[i+1:]
		}

		switch name {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := lstat(fsys, next)
		if err != nil {
			return "", err
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			links++
			if links > maxSymlinks {
				return "", &fs.PathError{Op: "chdir", Path: next, Err: ErrTooManyLinks}
			}
			link, err := readlink(fsys, next)
			if err != nil {
				return "", err
			}
			if filepath.IsAbs(link) {
				resolved = "/"
			}
			pending = link + "/" + pending
			continue
		}

		if !info.IsDir() {
			return "", &fs.PathError{Op: "chdir", Path: next, Err: ErrNotDirectory}
		}
		if err := canSearch(fsys, next, info); err != nil {
			return "", &fs.PathError{Op: "chdir", Path: next, Err: err}
		}
		resolved = next
	}

	return resolved, nil
}

func lstat(fsys afero.Fs, name string) (fs.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fsys.Stat(name)
}

func readlink(fsys afero.Fs, name string) (string, error) {
	if r, ok := fsys.(afero.LinkReader); ok {
		return r.ReadlinkIfPossible(name)
	}
	return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
}

// canSearch checks that the user may enter dir. The OS backend asks the
// kernel so ownership and privileges are honored; other backends only have
// the owner's search bit to go on.
func canSearch(fsys afero.Fs, dir string, info fs.FileInfo) error {
	if _, ok := fsys.(*afero.OsFs); ok {
		return searchable(dir)
	}
	if info.Mode().Perm()&0100 == 0 {
		return fs.ErrPermission
	}
	return nil
}
