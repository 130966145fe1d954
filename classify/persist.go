package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ModelFile is the file name used when SaveModel or LoadModel is given a
// directory.
const ModelFile = "model.msgpack"

type envelope struct {
	Name  string             `msgpack:"name"`
	Model msgpack.RawMessage `msgpack:"model"`
}

func modelPath(path string) string {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return filepath.Join(path, ModelFile)
	}
	return path
}

// SaveModel writes a named model to path (or <path>/model.msgpack for a
// directory). An existing file is never overwritten.
func SaveModel(path, name string, m Model) error {
	raw, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("classify: encode %s: %w", name, err)
	}
	buf, err := msgpack.Marshal(envelope{Name: name, Model: raw})
	if err != nil {
		return fmt.Errorf("classify: encode %s: %w", name, err)
	}

	path = modelPath(path)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrFileExists, path)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// LoadModel reads a model written by SaveModel and returns its name.
func LoadModel(path string) (string, Model, error) {
	buf, err := os.ReadFile(modelPath(path))
	if err != nil {
		return "", nil, err
	}
	var env envelope
	if err := msgpack.Unmarshal(buf, &env); err != nil {
		return "", nil, fmt.Errorf("classify: decode %s: %w", path, err)
	}
	m, err := Construct(env.Name, nil)
	if err != nil {
		return "", nil, err
	}
	if err := msgpack.Unmarshal(env.Model, m); err != nil {
		return "", nil, fmt.Errorf("classify: decode %s: %w", env.Name, err)
	}
	return env.Name, m, nil
}
