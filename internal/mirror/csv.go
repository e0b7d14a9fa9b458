// Package mirror keeps a flat-file audit trail of opened signals. The
// relational store is the source of truth; the mirror is a best-effort
// side-effect export fed after a successful insert, never a parallel
// write path.
package mirror

import (
	"encoding/csv"
	"os"
	"sync"
	"time"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/instrument"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
)

var header = []string{
	"timestamp",
	"ticker",
	"prediction",
	"open_price",
	"sl",
	"tp",
	"timeframe",
	"signal_time",
	"signal_id",
	"close_price",
	"result",
	"pips",
}

type CSVMirror struct {
	path string
	mu   sync.Mutex
}

func NewCSV(path string) *CSVMirror {
	return &CSVMirror{path: path}
}

func (m *CSVMirror) Path() string {
	return m.path
}

// RecordOpen appends one row for an opened signal. The file and header row are
// created on first use. Close updates are never written back; the close
// columns stay empty and result reflects the state at open time.
func (m *CSVMirror) RecordOpen(sig *models.Signal, conv instrument.Convention) error {
	if m == nil || sig == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}

	ts := sig.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if err := w.Write([]string{
		ts.UTC().Format(time.RFC3339),
		sig.Ticker,
		sig.Prediction,
		conv.FormatPrice(sig.OpenPrice),
		conv.FormatPrice(sig.SL),
		conv.FormatPrice(sig.TP),
		sig.Timeframe,
		sig.SignalTime,
		sig.SignalID,
		"",
		sig.Result,
		"",
	}); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// Contents returns the raw mirror bytes for the download and debug endpoints.
// A mirror that has not recorded anything yet reads as empty, not as an error.
func (m *CSVMirror) Contents() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}
