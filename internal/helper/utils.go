package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GenerateUUID creates a random unique UUID string
func GenerateUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s is a well-formed UUID.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}

// PrettyPrint writes v as indented JSON.
func PrettyPrint(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func CreateFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", path, err)
	}
	return nil
}

// SaveFile copies r into dir under the base name of name and returns the
// written path. An existing file with the same name is replaced.
func SaveFile(dir, name string, r io.Reader) (string, error) {
	if err := CreateFolder(dir); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(name))
	if src, ok := r.(*os.File); ok && sameFile(src, dst) {
		return dst, nil
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return dst, nil
}

func sameFile(src *os.File, path string) bool {
	a, err := src.Stat()
	if err != nil {
		return false
	}
	b, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}
