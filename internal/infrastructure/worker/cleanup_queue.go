package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/imanod-api/internal/application/ports"
)

const (
	// QueueLimpieza lista de Redis con las llaves de archivos por borrar.
	QueueLimpieza = "jobs:limpieza_archivos"

	jobTypeBorrarArchivo = "borrar_archivo"
	brpopTimeout         = 5 * time.Second
	deleteTimeout        = 30 * time.Second
)

// Job sobre genérico de las tareas encoladas.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type deletePayload struct {
	Key string `json:"key"`
}

// ─── Cola respaldada en Redis ──────────────────────────────────────────────

// RedisCleanupQueue encola borrados con LPUSH; StartCleanupPool los consume con BRPOP.
type RedisCleanupQueue struct {
	rdb   *redis.Client
	queue string
}

// NewRedisCleanupQueue construye la cola sobre QueueLimpieza.
func NewRedisCleanupQueue(rdb *redis.Client) *RedisCleanupQueue {
	return &RedisCleanupQueue{rdb: rdb, queue: QueueLimpieza}
}

var _ ports.CleanupQueue = (*RedisCleanupQueue)(nil)

// Enqueue nunca falla hacia el llamador: el error se registra y el archivo queda huérfano.
func (q *RedisCleanupQueue) Enqueue(ctx context.Context, key string) {
	if key == "" {
		return
	}
	encoded, err := encodeDeleteJob(key)
	if err == nil {
		err = q.rdb.LPush(ctx, q.queue, encoded).Err()
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cleanup: no se pudo encolar el borrado")
	}
}

func encodeDeleteJob(key string) ([]byte, error) {
	payload, err := json.Marshal(deletePayload{Key: key})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobTypeBorrarArchivo, Payload: payload})
}

// StartCleanupPool lanza n goroutines que consumen la cola hasta que ctx se cancele.
func StartCleanupPool(ctx context.Context, rdb *redis.Client, n int, store ports.ObjectStorage) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		go runCleanupWorker(ctx, rdb, store, i)
	}
	log.Info().Int("workers", n).Str("queue", QueueLimpieza).Msg("cleanup: pool iniciado")
}

func runCleanupWorker(ctx context.Context, rdb *redis.Client, store ports.ObjectStorage, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("cleanup: worker detenido")
			return
		default:
		}

		res, err := rdb.BRPop(ctx, brpopTimeout, QueueLimpieza).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Int("worker", id).Msg("cleanup: error en BRPOP")
			time.Sleep(time.Second)
			continue
		}
		// res[0] es el nombre de la lista, res[1] el valor
		if len(res) < 2 {
			continue
		}
		processCleanupJob(ctx, store, []byte(res[1]))
	}
}

// processCleanupJob decodifica y ejecuta un borrado. Los errores solo se registran.
func processCleanupJob(ctx context.Context, store ports.ObjectStorage, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("cleanup: trabajo mal formado")
		return
	}
	if job.Type != jobTypeBorrarArchivo {
		log.Warn().Str("type", job.Type).Msg("cleanup: tipo de trabajo desconocido")
		return
	}
	var p deletePayload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.Key == "" {
		log.Error().Err(err).Msg("cleanup: payload inválido")
		return
	}
	deleteKey(ctx, store, p.Key)
}

func deleteKey(ctx context.Context, store ports.ObjectStorage, key string) {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()
	if err := store.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cleanup: fallo al borrar archivo")
		return
	}
	log.Debug().Str("key", key).Msg("cleanup: archivo borrado")
}

// ─── Cola en proceso ───────────────────────────────────────────────────────

// InlineCleanupQueue borra en una goroutine propia cuando no hay Redis configurado.
type InlineCleanupQueue struct {
	store ports.ObjectStorage
	wg    sync.WaitGroup
}

// NewInlineCleanupQueue construye la cola en proceso.
func NewInlineCleanupQueue(store ports.ObjectStorage) *InlineCleanupQueue {
	return &InlineCleanupQueue{store: store}
}

var _ ports.CleanupQueue = (*InlineCleanupQueue)(nil)

// Enqueue desacopla el borrado de la cancelación de la petición.
func (q *InlineCleanupQueue) Enqueue(ctx context.Context, key string) {
	if key == "" {
		return
	}
	bg := context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		deleteKey(bg, q.store, key)
	}()
}

// Wait bloquea hasta que terminen los borrados en curso. Se usa en el apagado.
func (q *InlineCleanupQueue) Wait() {
	q.wg.Wait()
}
