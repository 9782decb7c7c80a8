package ports

import "context"

// ObjectStorage almacenamiento de fotos y logos.
type ObjectStorage interface {
	// Put guarda data bajo folder y devuelve la llave generada.
	Put(ctx context.Context, folder, filename string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// CleanupQueue cola de borrados de archivos posteriores al commit.
// Los fallos se registran en el log; nunca se reintentan ni se propagan.
type CleanupQueue interface {
	Enqueue(ctx context.Context, key string)
}

// Mailer envío de correos de texto plano.
type Mailer interface {
	Send(to []string, subject, body string) error
}
