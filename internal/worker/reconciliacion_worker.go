package worker

// reconciliacion_worker.go
// Retries persistence of sales whose stock decrement committed but whose
// record could not be saved. Stock is never touched again here: the only
// action is re-inserting the sale row. Exhausted retries go to the DLQ and
// raise an operator alert through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/infra"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReconciliacionJobPayload carries the full sale so the retry does not depend
// on any database state.
type ReconciliacionJobPayload struct {
	Venta *model.Venta `json:"venta"`
}

type ReconciliacionWorker struct {
	ventaRepo  repository.VentaRepository
	rdb        *redis.Client
	cb         *infra.CircuitBreaker
	mailer     *infra.Mailer
	alertEmail string
}

func NewReconciliacionWorker(
	ventaRepo repository.VentaRepository,
	rdb *redis.Client,
	cb *infra.CircuitBreaker,
	mailer *infra.Mailer,
	alertEmail string,
) *ReconciliacionWorker {
	return &ReconciliacionWorker{
		ventaRepo:  ventaRepo,
		rdb:        rdb,
		cb:         cb,
		mailer:     mailer,
		alertEmail: alertEmail,
	}
}

// Process retries the sale insert with exponential backoff. A sale saved via
// this path is marked "reconciliada" so operators can audit it.
func (w *ReconciliacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReconciliacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Venta == nil {
		log.Error().Err(err).Msg("reconciliacion_worker: invalid payload")
		return
	}

	venta := payload.Venta
	venta.Estado = "reconciliada"

	err := withRetry(ctx, 3, func(attempt int) error {
		if venta.NumeroTicket == 0 {
			// The original settlement may have failed before getting a number.
			numero, seqErr := w.ventaRepo.NextTicketNumber(ctx)
			if seqErr != nil {
				return seqErr
			}
			venta.NumeroTicket = numero
		}
		if insErr := w.ventaRepo.Create(ctx, venta); insErr != nil {
			log.Warn().Err(insErr).Int("attempt", attempt+1).
				Str("venta_id", venta.ID.String()).
				Msg("reconciliacion_worker: insert failed, retrying")
			return insErr
		}
		return nil
	})
	if err == nil {
		log.Info().Str("venta_id", venta.ID.String()).
			Int("numero_ticket", venta.NumeroTicket).
			Msg("reconciliacion_worker: venta reconciliada")
		return
	}

	log.Error().Err(err).Str("venta_id", venta.ID.String()).
		Msg("reconciliacion_worker: retries exhausted")
	SendToDLQ(ctx, w.rdb, QueueReconciliacion, "reconciliacion", raw, err.Error(), 3)

	if w.mailer == nil || w.alertEmail == "" {
		return
	}
	alertErr := w.cb.Execute(func() error {
		return w.mailer.SendAlerta(
			w.alertEmail,
			fmt.Sprintf("Venta %s sin persistir", venta.ID),
			fmt.Sprintf("La venta %s descontó stock a las %s pero no pudo guardarse tras 3 intentos.\n"+
				"El trabajo quedó en la DLQ %s%s para revisión manual.",
				venta.ID, venta.CreatedAt.Format(time.RFC3339), DLQPrefix, QueueReconciliacion),
		)
	})
	if alertErr != nil {
		log.Error().Err(alertErr).Msg("reconciliacion_worker: alert email failed")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
