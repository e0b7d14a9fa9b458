package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/instrument"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/mirror"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/notify"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/repository"
)

const signalTimeLayout = "2006-01-02 15:04:05"

type OpenRequest struct {
	Ticker     string
	Prediction string
	OpenPrice  decimal.Decimal
	SL         decimal.Decimal
	TP         decimal.Decimal
	Timeframe  string
	SignalTime string
	SignalID   string
	RawPayload []byte
}

type CloseRequest struct {
	Ticker     string
	ClosePrice decimal.Decimal
	SignalID   string
}

type CloseOutcome struct {
	SignalID string
	Result   string
	Pips     decimal.Decimal
}

// SignalService owns the signal lifecycle: opening PENDING signals and
// reconciling close events against them. All shared state lives in the
// repository; the service itself is stateless per request.
type SignalService struct {
	Repo     repository.Repository
	Mirror   *mirror.CSVMirror
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Open persists a new PENDING signal, mirrors it to the CSV audit file, and
// announces it on the channel. Only the relational insert can fail the call:
// the mirror is best-effort and notification failure never blocks a
// persisted signal.
func (s *SignalService) Open(ctx context.Context, req OpenRequest) (*models.Signal, error) {
	conv := instrument.Resolve(req.Ticker)

	signalTime := strings.TrimSpace(req.SignalTime)
	if signalTime == "" {
		signalTime = time.Now().UTC().Format(signalTimeLayout)
	}
	signalID := strings.TrimSpace(req.SignalID)
	if signalID == "" {
		signalID = models.SignalIDNone
	}

	sig := &models.Signal{
		SignalID:   signalID,
		Ticker:     strings.ToUpper(strings.TrimSpace(req.Ticker)),
		Prediction: strings.ToUpper(strings.TrimSpace(req.Prediction)),
		OpenPrice:  conv.RoundPrice(req.OpenPrice),
		SL:         conv.RoundPrice(req.SL),
		TP:         conv.RoundPrice(req.TP),
		Timeframe:  strings.TrimSpace(req.Timeframe),
		SignalTime: signalTime,
		Result:     models.ResultPending,
		RawPayload: datatypes.JSON(req.RawPayload),
	}

	if err := s.Repo.InsertSignal(ctx, sig); err != nil {
		return nil, fmt.Errorf("insert signal: %w", err)
	}

	if s.Mirror != nil {
		if err := s.Mirror.RecordOpen(sig, conv); err != nil {
			s.Logger.Warn("csv mirror write failed",
				zap.String("ticker", sig.Ticker),
				zap.Error(err),
			)
		}
	}

	s.notifyChannel(ctx, notify.FormatOpen(sig, conv), sig.Ticker)

	s.Logger.Info("signal opened",
		zap.Uint64("id", sig.ID),
		zap.String("ticker", sig.Ticker),
		zap.String("prediction", sig.Prediction),
		zap.String("signal_id", sig.SignalID),
	)
	return sig, nil
}

// Close matches a close event to its PENDING signal, computes the outcome,
// and transitions the row exactly once. The conditional update in the store
// decides races: losing a race reads the same as no pending signal.
func (s *SignalService) Close(ctx context.Context, req CloseRequest) (CloseOutcome, error) {
	conv := instrument.Resolve(req.Ticker)
	closePrice := conv.RoundPrice(req.ClosePrice)

	sig, err := s.findPending(ctx, req.Ticker, req.SignalID)
	if err != nil {
		return CloseOutcome{}, err
	}

	diff := closePrice.Sub(sig.OpenPrice)
	if sig.Prediction == models.PredictionSell {
		diff = sig.OpenPrice.Sub(closePrice)
	}
	pips := conv.Pips(diff)

	// Flat moves count as WIN: only a strictly negative directional move
	// is a LOSS.
	result := models.ResultWin
	if pips.Sign() < 0 {
		result = models.ResultLoss
	}

	affected, err := s.Repo.CloseSignal(ctx, sig.ID, closePrice, pips, result, time.Now().UTC())
	if err != nil {
		return CloseOutcome{}, fmt.Errorf("close signal: %w", err)
	}
	if affected == 0 {
		return CloseOutcome{}, repository.ErrSignalNotFound
	}

	s.notifyChannel(ctx, notify.FormatClose(sig.Ticker, result, pips, displaySignalID(sig.SignalID)), sig.Ticker)

	s.Logger.Info("signal closed",
		zap.Uint64("id", sig.ID),
		zap.String("ticker", sig.Ticker),
		zap.String("result", result),
		zap.String("pips", pips.StringFixed(1)),
	)
	return CloseOutcome{SignalID: sig.SignalID, Result: result, Pips: pips}, nil
}

// MarkStale bulk-marks PENDING rows older than the cutoff as OUTDATED.
func (s *SignalService) MarkStale(ctx context.Context, olderThan time.Time) (int64, error) {
	count, err := s.Repo.MarkStalePending(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("mark stale: %w", err)
	}
	if count > 0 {
		s.Logger.Info("stale pending signals marked outdated", zap.Int64("count", count))
	}
	return count, nil
}

func (s *SignalService) findPending(ctx context.Context, ticker, signalID string) (*models.Signal, error) {
	signalID = strings.TrimSpace(signalID)
	if signalID != "" && !strings.EqualFold(signalID, models.SignalIDNone) {
		return s.Repo.FindPendingBySignalID(ctx, ticker, signalID)
	}
	return s.Repo.FindLatestPending(ctx, ticker)
}

func (s *SignalService) notifyChannel(ctx context.Context, text, ticker string) {
	if s.Notifier == nil {
		return
	}
	if ok, detail := s.Notifier.Send(ctx, text); !ok {
		s.Logger.Warn("telegram delivery failed",
			zap.String("ticker", ticker),
			zap.String("detail", detail),
		)
	}
}

func displaySignalID(signalID string) string {
	if strings.EqualFold(signalID, models.SignalIDNone) {
		return ""
	}
	return signalID
}
