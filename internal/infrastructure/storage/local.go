package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/imanod-api/internal/application/ports"
)

var _ ports.ObjectStorage = (*Local)(nil)

// Local guarda los archivos bajo un directorio raíz.
type Local struct {
	root string
}

// NewLocal crea el directorio raíz si no existe.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de almacenamiento: %w", err)
	}
	return &Local{root: root}, nil
}

func (s *Local) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("llave fuera del almacenamiento: %q", key)
	}
	return p, nil
}

// Put escribe el archivo y devuelve su llave relativa.
func (s *Local) Put(_ context.Context, folder, filename string, data []byte) (string, error) {
	key := newKey(folder, filename)
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("crear carpeta %s: %w", folder, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("escribir %s: %w", key, err)
	}
	return key, nil
}

// Delete borra el archivo; si ya no existe no es error.
func (s *Local) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("borrar %s: %w", key, err)
	}
	return nil
}
