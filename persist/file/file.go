// Package file stores dictionary documents as files in a directory.
package file

import (
	"context"
	"os"
	"path/filepath"
)

// Persist implements dictjson.Persist on top of a directory.
type Persist struct {
	basepath string
}

// NewPersistForPath returns a Persist that loads and stores documents as
// files in the directory at the given path.
//
//	p := NewPersistForPath("/usr/share/zhconv")
//	set, err := dictjson.Fetch(ctx, p, "dictionary_maxlength.json")
func NewPersistForPath(path string) Persist {
	return Persist{path}
}

// Load loads the bytes persisted in the named file.
func (p Persist) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(p.basepath, name))
}

// Store writes doc to the named file, replacing an existing one. The file is
// written under a temporary name first and renamed, so readers never see a
// partial document.
func (p Persist) Store(ctx context.Context, name string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(p.basepath, name)
	tmp, err := os.CreateTemp(p.basepath, "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
