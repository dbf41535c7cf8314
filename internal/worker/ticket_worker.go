package worker

// ticket_worker.go
// Generates the PDF ticket for a persisted sale, off the request path.

import (
	"context"
	"encoding/json"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/infra"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TicketJobPayload is the job envelope sent to QueueTicket.
type TicketJobPayload struct {
	VentaID string `json:"venta_id"`
}

type TicketWorker struct {
	ventaRepo   repository.VentaRepository
	storagePath string
}

func NewTicketWorker(ventaRepo repository.VentaRepository, storagePath string) *TicketWorker {
	return &TicketWorker{ventaRepo: ventaRepo, storagePath: storagePath}
}

// Process fetches the sale and writes its PDF ticket to disk.
func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload TicketJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("ticket_worker: invalid payload")
		return
	}
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("ticket_worker: invalid venta_id")
		return
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("ticket_worker: venta not found")
		return
	}

	path, err := infra.GenerarTicketPDF(venta, w.storagePath)
	if err != nil {
		log.Warn().Err(err).Str("venta_id", payload.VentaID).Msg("ticket_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", path).Str("venta_id", payload.VentaID).Msg("ticket_worker: PDF generated")
}
