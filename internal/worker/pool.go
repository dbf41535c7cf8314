package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReconciliacion = "jobs:reconciliacion"
	QueueTicket         = "jobs:ticket"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarReconciliacion pushes a sale whose record failed to persist; the
// stock decrement already committed, so the job only retries the insert.
func (d *Dispatcher) EncolarReconciliacion(ctx context.Context, venta *model.Venta) error {
	return d.enqueue(ctx, QueueReconciliacion, "reconciliacion", ReconciliacionJobPayload{Venta: venta})
}

// EncolarTicket pushes a PDF ticket generation job for a persisted sale.
func (d *Dispatcher) EncolarTicket(ctx context.Context, ventaID uuid.UUID) error {
	return d.enqueue(ctx, QueueTicket, "ticket", TicketJobPayload{VentaID: ventaID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers bundles the per-queue processors consumed by the pool.
type Handlers struct {
	Reconciliacion *ReconciliacionWorker
	Ticket         *TicketWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers Handlers, id int) {
	queues := []string{QueueReconciliacion, QueueTicket}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch queue {
	case QueueReconciliacion:
		handlers.Reconciliacion.Process(ctx, job.Payload)
	case QueueTicket:
		handlers.Ticket.Process(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("job from unknown queue")
	}
}
