package build

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/sitepack/internal/errors"
)

// Mirror clears out, keeping the protected paths (relative to out), and then
// copies every file of src whose extension is in copyExt, or that has no
// extension, to the same relative path under out.
func Mirror(src, out string, copyExt, protect []string) error {
	if err := clearDir(out, "", protectSet(protect)); err != nil {
		return errors.NewIOError(errors.ErrCodeMirrorFailed, "cannot clear "+out, err)
	}

	allowed := map[string]bool{"": true}
	for _, ext := range copyExt {
		allowed[strings.ToLower(ext)] = true
	}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(out, rel))
	})
	if err != nil {
		return errors.NewIOError(errors.ErrCodeMirrorFailed, "cannot mirror "+src, err)
	}
	return nil
}

// protectedPaths holds each protected path and all of its parents.
type protectedPaths struct {
	exact   map[string]bool
	parents map[string]bool
}

func protectSet(protect []string) protectedPaths {
	p := protectedPaths{exact: map[string]bool{}, parents: map[string]bool{}}
	for _, rel := range protect {
		rel = filepath.Clean(rel)
		p.exact[rel] = true
		for dir := filepath.Dir(rel); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
			p.parents[dir] = true
		}
	}
	return p
}

// clearDir removes the contents of root/rel except protected paths. A
// missing directory is already clear.
func clearDir(root, rel string, protect protectedPaths) error {
	entries, err := os.ReadDir(filepath.Join(root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		child := filepath.Join(rel, entry.Name())
		switch {
		case protect.exact[child]:
			continue
		case protect.parents[child] && entry.IsDir():
			if err := clearDir(root, child, protect); err != nil {
				return err
			}
		default:
			if err := os.RemoveAll(filepath.Join(root, child)); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(from, to string) error {
	info, err := os.Stat(from)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}

	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
