package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// MarshalFile writes o as indented JSON to path.
func MarshalFile(path string, o any) (outErr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	defer Close(path, f, &outErr)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	err = enc.Encode(o)
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	return nil
}

// Close closes c and joins any failure into outErr. os.ErrClosed is ignored
// so that it can be deferred for files that are also closed explicitly.
func Close(name string, c io.Closer, outErr *error) {
	err := c.Close()
	if err != nil && !errors.Is(err, os.ErrClosed) {
		*outErr = errors.Join(*outErr, fmt.Errorf("close %s: %w", name, err))
	}
}
