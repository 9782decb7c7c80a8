package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jhoicas/imanod-api/internal/application/ports"
)

var _ ports.ObjectStorage = (*GCS)(nil)

// GCS guarda los archivos en un bucket de Google Cloud Storage.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS abre el cliente. Sin archivo de credenciales usa las del entorno (ADC).
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gcs: bucket vacío")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: storage.NewClient: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Put sube los bytes como un objeto nuevo.
func (s *GCS) Put(ctx context.Context, folder, filename string, data []byte) (string, error) {
	key := newKey(folder, filename)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType(key)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs: escribir %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: cerrar %s: %w", key, err)
	}
	return key, nil
}

// Delete borra el objeto; uno inexistente no es error.
func (s *GCS) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs: borrar %s: %w", key, err)
	}
	return nil
}

// Close libera el cliente.
func (s *GCS) Close() error {
	return s.client.Close()
}
