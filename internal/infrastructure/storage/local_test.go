package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(root)
	require.NoError(t, err)

	key, err := s.Put(ctx, "tipos", "tabla pino.jpg", []byte("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "tipos/"))
	assert.True(t, strings.HasSuffix(key, "-tabla_pino.jpg"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "borrar dos veces no falla")

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalRechazaLlavesFueraDeRaiz(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	require.Error(t, s.Delete(context.Background(), "../../etc/passwd"))
}

func TestNewKey(t *testing.T) {
	k1 := newKey("fuegoya", "../../secreto.png")
	k2 := newKey("fuegoya", "../../secreto.png")
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "fuegoya/"))
	assert.True(t, strings.HasSuffix(k1, "-secreto.png"))
	assert.Equal(t, "image/png", contentType(k1))
	assert.Equal(t, "application/octet-stream", contentType("x/y.bin"))
}
