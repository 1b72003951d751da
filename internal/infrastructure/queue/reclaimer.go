package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2bplatform/b2b-backend/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	maxAttempts    = 5
	retryDelay     = 30 * time.Second
)

// Reclaimer retries file releases that failed inline. Image deletion removes
// the record first and treats a failed file release as non-fatal; the orphaned
// key lands here so the stale file is eventually removed.
type Reclaimer struct {
	jobs    chan job
	workers int
	store   ports.FileStore
	log     zerolog.Logger
}

type job struct {
	storageKey string
	attempt    int
}

// NewReclaimer creates a Reclaimer with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewReclaimer(numWorkers int, store ports.FileStore, log zerolog.Logger) *Reclaimer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Reclaimer{
		jobs:    make(chan job, channelBuffer),
		workers: numWorkers,
		store:   store,
		log:     log,
	}
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (r *Reclaimer) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		go r.runWorker(ctx)
	}
}

// Enqueue hands a storage key to the workers. The call never blocks: when
// the buffer is full the key is dropped and logged, a stale file being an
// accepted leak.
func (r *Reclaimer) Enqueue(storageKey string) {
	select {
	case r.jobs <- job{storageKey: storageKey, attempt: 1}:
	default:
		r.log.Warn().Str("storage_key", storageKey).Msg("reclaim queue full, dropping key")
	}
}

func (r *Reclaimer) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-r.jobs:
			if !ok {
				return
			}
			r.process(ctx, j)
		}
	}
}

func (r *Reclaimer) process(ctx context.Context, j job) {
	err := r.store.Delete(ctx, j.storageKey)
	if err == nil {
		r.log.Info().Str("storage_key", j.storageKey).Int("attempt", j.attempt).Msg("orphaned file reclaimed")
		return
	}

	if j.attempt >= maxAttempts {
		r.log.Error().Err(err).Str("storage_key", j.storageKey).Msg("giving up on orphaned file")
		return
	}

	r.log.Warn().Err(err).Str("storage_key", j.storageKey).Int("attempt", j.attempt).Msg("file reclaim failed, will retry")
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay):
			select {
			case r.jobs <- job{storageKey: j.storageKey, attempt: j.attempt + 1}:
			default:
			}
		}
	}()
}
