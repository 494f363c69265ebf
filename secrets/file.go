package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store backed by a JSON file in the working directory, readable only by the owner.
// The file lives at <workdir>/.<service>/secrets.json.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(workdir, service string) *File {
	return &File{
		path: filepath.Join(workdir, fmt.Sprintf(".%s", service), "secrets.json"),
	}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validate(key); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return nil, err
	}

	if v, ok := values[key]; ok {
		return []byte(v), nil
	}

	return nil, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := validate(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}

	values[key] = string(value)

	return f.save(values)
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := validate(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := values[key]; !ok {
		return nil
	}

	delete(values, key)

	return f.save(values)
}

func (f *File) load() (map[string]string, error) {
	values := map[string]string{}

	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return values, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to read secrets file (%w)", err)
	}

	if len(b) > 0 {
		if err := json.Unmarshal(b, &values); err != nil {
			return nil, fmt.Errorf("invalid secrets file %v (%w)", f.path, err)
		}
	}

	return values, nil
}

// save writes to a temporary file and renames it over the secrets file so that a failed write never leaves a
// truncated file behind.
func (f *File) save(values map[string]string) error {
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "secrets")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := tmp.Chmod(0600); err != nil {
		return err
	}

	if _, err := tmp.Write(b); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
