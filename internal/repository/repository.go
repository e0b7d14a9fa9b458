package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
)

// ErrSignalNotFound is returned when no PENDING row matches a lookup. A close
// that loses the conditional-update race surfaces the same error: by the time
// it ran, there was no pending signal left to close.
var ErrSignalNotFound = errors.New("signal not found")

type ListSignalsParams struct {
	Limit   int
	Offset  int
	Ticker  *string
	Result  *string
	Since   *time.Time
	OrderBy string
	Asc     *bool
}

type Repository interface {
	// InsertSignal appends a new PENDING row.
	InsertSignal(ctx context.Context, item *models.Signal) error

	// FindPendingBySignalID returns the unique PENDING row for
	// (ticker, signal_id); FindLatestPending returns the most recently
	// created PENDING row for the ticker. Both return ErrSignalNotFound
	// when nothing matches.
	FindPendingBySignalID(ctx context.Context, ticker, signalID string) (*models.Signal, error)
	FindLatestPending(ctx context.Context, ticker string) (*models.Signal, error)

	// CloseSignal fills in the outcome fields with a single conditional
	// update guarded on result = 'PENDING', and reports how many rows it
	// touched. Zero rows means the signal was already closed.
	CloseSignal(ctx context.Context, id uint64, closePrice, pips decimal.Decimal, result string, closedAt time.Time) (int64, error)

	// MarkStalePending bulk-marks PENDING rows created before the cutoff
	// as OUTDATED. Administrative side channel, not part of the lifecycle.
	MarkStalePending(ctx context.Context, olderThan time.Time) (int64, error)

	ListSignals(ctx context.Context, params ListSignalsParams) ([]models.Signal, error)
	CountSignals(ctx context.Context, params ListSignalsParams) (int64, error)
}
