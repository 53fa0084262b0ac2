package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// readJSON decodes the file at path into out. It reports false, without an
// error, when the file does not exist.
func readJSON(path string, out any) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	if err := json.NewDecoder(bufio.NewReader(f)).Decode(out); err != nil {
		return false, &os.PathError{Op: "decode", Path: path, Err: err}
	}
	return true, nil
}

// writeJSON stores v as compact JSON, the layout solana-keygen uses.
func writeJSON(path string, v any, mode os.FileMode) error {
	return writeAtomic(path, mode, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(v)
	})
}

// writeFile stores b as the whole content of path.
func writeFile(path string, b []byte, mode os.FileMode) error {
	return writeAtomic(path, mode, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}

// writeAtomic streams the new content into a synced temp file in the same
// directory and renames it over path. Readers see the old or the new file,
// never a partial one.
func writeAtomic(path string, mode os.FileMode, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = fill(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = f.Chmod(mode); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir makes a rename in dir durable where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
