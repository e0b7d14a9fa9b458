package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Signal prediction directions.
const (
	PredictionBuy  = "BUY"
	PredictionSell = "SELL"
)

// SignalIDNone is the sentinel stored when an alert carries no correlation
// key; close lookups then fall back to latest-pending per ticker.
const SignalIDNone = "N/A"

// Signal results. A signal stays PENDING until a close event matches it;
// WIN/LOSS are terminal. OUTDATED is set only by the housekeeping path for
// stale PENDING rows that never received a close.
const (
	ResultPending  = "PENDING"
	ResultWin      = "WIN"
	ResultLoss     = "LOSS"
	ResultOutdated = "OUTDATED"
)

// Signal is one opened (and eventually closed) trading recommendation.
type Signal struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	SignalID string `gorm:"type:varchar(100);index:idx_signals_ticker_signal_id,priority:2"`
	Ticker   string `gorm:"type:varchar(30);not null;index:idx_signals_ticker_signal_id,priority:1"`

	Prediction string          `gorm:"type:varchar(10);not null"`
	OpenPrice  decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	SL         decimal.Decimal `gorm:"column:sl;type:numeric(20,10);not null"`
	TP         decimal.Decimal `gorm:"column:tp;type:numeric(20,10);not null"`

	Timeframe  string `gorm:"type:varchar(20)"`
	SignalTime string `gorm:"type:varchar(40)"`

	ClosePrice *decimal.Decimal `gorm:"type:numeric(20,10)"`
	Result     string           `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	Pips       *decimal.Decimal `gorm:"type:numeric(20,1)"`
	ClosedAt   *time.Time       `gorm:"type:timestamptz"`

	RawPayload datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Signal) TableName() string {
	return "signals"
}

// Pending reports whether the signal can still be matched by a close event.
func (s *Signal) Pending() bool {
	return s.Result == ResultPending
}
