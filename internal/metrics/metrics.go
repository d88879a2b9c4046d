package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder translates lending lifecycle events into OpenTelemetry metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	requestsCreated metric.Int64Counter
	decisions       metric.Int64Counter
	returns         metric.Int64Counter
	finesCharged    metric.Float64Counter
	stockouts       metric.Int64Counter
	txRetries       metric.Int64Counter
}

func NewRecorder(meter metric.Meter) (*Recorder, error) {
	created, err := meter.Int64Counter("toolcrib.requests.created",
		metric.WithDescription("Number of tool requests submitted"),
	)
	if err != nil {
		return nil, err
	}

	decisions, err := meter.Int64Counter("toolcrib.items.decisions",
		metric.WithDescription("Number of request item decisions by outcome and category"),
	)
	if err != nil {
		return nil, err
	}

	returns, err := meter.Int64Counter("toolcrib.items.returns",
		metric.WithDescription("Number of settled tool returns"),
	)
	if err != nil {
		return nil, err
	}

	fines, err := meter.Float64Counter("toolcrib.fines.charged",
		metric.WithDescription("Total fine amount charged on returns"),
	)
	if err != nil {
		return nil, err
	}

	stockouts, err := meter.Int64Counter("toolcrib.inventory.stockouts",
		metric.WithDescription("Number of reservations refused for insufficient stock"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter("toolcrib.tx.retries",
		metric.WithDescription("Number of transactions retried after lock contention"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		requestsCreated: created,
		decisions:       decisions,
		returns:         returns,
		finesCharged:    fines,
		stockouts:       stockouts,
		txRetries:       retries,
	}, nil
}

func (r *Recorder) RequestCreated(ctx context.Context, items int) {
	if r == nil {
		return
	}
	r.requestsCreated.Add(ctx, 1, metric.WithAttributes(attribute.Int("items", items)))
}

func (r *Recorder) Decision(ctx context.Context, category string, approved bool) {
	if r == nil {
		return
	}
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	r.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("outcome", outcome),
	))
}

func (r *Recorder) Return(ctx context.Context, late bool, fine float64) {
	if r == nil {
		return
	}
	r.returns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("late", late)))
	if fine > 0 {
		r.finesCharged.Add(ctx, fine)
	}
}

func (r *Recorder) Stockout(ctx context.Context, toolCribID int64) {
	if r == nil {
		return
	}
	r.stockouts.Add(ctx, 1, metric.WithAttributes(attribute.Int64("tool_crib_id", toolCribID)))
}

func (r *Recorder) TxRetry(ctx context.Context, reason string) {
	if r == nil {
		return
	}
	r.txRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
