package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
)

// createFile creates path, runs write on it and closes it. The close error
// is returned when write succeeded.
func createFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeClose(f, path, write)
}

func writeClose(wc io.WriteCloser, path string, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		wc.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeNpy(dir, name string, val any) error {
	return createFile(filepath.Join(dir, name+".npy"), func(w io.Writer) error {
		return npyio.Write(w, val)
	})
}

func readNpy[T any](dir, name string) ([]T, error) {
	path := filepath.Join(dir, name+".npy")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var v []T
	if err := npyio.Read(f, &v); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return v, nil
}
