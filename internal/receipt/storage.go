package receipt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidImageName is returned for image names that are not a single path element
var ErrInvalidImageName = errors.New("invalid image name")

// Storage keeps receipt images outside the database. Names are flat: the
// service derives them from the receipt ID and the uploaded filename.
type Storage interface {
	// Save stores an image and returns the name to retrieve it by
	Save(name string, data []byte) (string, error)

	// Get retrieves an image by name
	Get(name string) ([]byte, error)

	// Delete removes an image
	Delete(name string) error
}

// validateImageName accepts only a single, non-hidden path element
func validateImageName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidImageName, name)
	}
	return nil
}

// LocalStorage keeps receipt images in one directory
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the image directory if needed
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Save writes the image to a temporary file and renames it into place
func (l *LocalStorage) Save(name string, data []byte) (string, error) {
	if err := validateImageName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temporary image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, name)); err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return name, nil
}

// Get reads an image
func (l *LocalStorage) Get(name string) ([]byte, error) {
	if err := validateImageName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// Delete removes an image
func (l *LocalStorage) Delete(name string) error {
	if err := validateImageName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
