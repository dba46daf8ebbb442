package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

func CanceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func MustWriteFile(t *testing.T, path string, content string) {
	MustWriteFileMode(t, path, content, 0o600)
}

func MustWriteFileMode(t *testing.T, path string, content string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTree writes files (relative slash paths to contents) below root on
// disk and returns root.
func WriteTree(t *testing.T, root string, files map[string]string) string {
	t.Helper()
	for _, name := range sortedKeys(files) {
		MustWriteFile(t, filepath.Join(root, filepath.FromSlash(name)), files[name])
	}
	return root
}

// MemFs returns an in-memory file system holding files below root.
func MemFs(t *testing.T, root string, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, name := range sortedKeys(files) {
		MustWriteMemFile(t, fsys, filepath.Join(root, filepath.FromSlash(name)), files[name])
	}
	return fsys
}

func MustWriteMemFile(t *testing.T, fsys afero.Fs, path string, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func MustReadFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func Chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(original)
	})
}

func sortedKeys(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
