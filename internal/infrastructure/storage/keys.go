// Package storage guarda fotos y logos en disco local o en Google Cloud Storage.
package storage

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// newKey arma "folder/<uuid>-<nombre saneado>". La llave nunca depende solo del nombre del cliente.
func newKey(folder, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "archivo"
	}
	return path.Join(folder, uuid.NewString()+"-"+name)
}

// contentType por extensión; el resto queda como binario.
func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
