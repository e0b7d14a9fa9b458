package mirror

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/instrument"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
)

func testSignal(ticker string) *models.Signal {
	return &models.Signal{
		SignalID:   "sig-1",
		Ticker:     ticker,
		Prediction: models.PredictionBuy,
		OpenPrice:  decimal.RequireFromString("1.085"),
		SL:         decimal.RequireFromString("1.082"),
		TP:         decimal.RequireFromString("1.088"),
		Timeframe:  "15",
		SignalTime: "2026-02-10 16:00:00",
		Result:     models.ResultPending,
		CreatedAt:  time.Date(2026, 2, 10, 16, 0, 5, 0, time.UTC),
	}
}

func TestRecordOpen_HeaderOnFirstWrite(t *testing.T) {
	m := NewCSV(filepath.Join(t.TempDir(), "signals.csv"))

	if err := m.RecordOpen(testSignal("EURUSD"), instrument.Resolve("EURUSD")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := m.RecordOpen(testSignal("EURUSD"), instrument.Resolve("EURUSD")); err != nil {
		t.Fatalf("record: %v", err)
	}

	data, err := m.Contents()
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d want=3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "timestamp;ticker;prediction;open_price;sl;tp;timeframe;signal_time;signal_id;close_price;result;pips" {
		t.Fatalf("header=%q", lines[0])
	}
}

func TestRecordOpen_RowFormat(t *testing.T) {
	m := NewCSV(filepath.Join(t.TempDir(), "signals.csv"))

	if err := m.RecordOpen(testSignal("EURUSD"), instrument.Resolve("EURUSD")); err != nil {
		t.Fatalf("record: %v", err)
	}

	data, err := m.Contents()
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	row := strings.Split(lines[1], ";")
	if len(row) != 12 {
		t.Fatalf("columns=%d want=12: %q", len(row), lines[1])
	}
	if row[3] != "1.08500" {
		t.Fatalf("open_price=%q want=1.08500 (5-digit forex precision)", row[3])
	}
	if row[9] != "" || row[11] != "" {
		t.Fatalf("close columns must stay empty on open rows: %q", lines[1])
	}
	if row[10] != models.ResultPending {
		t.Fatalf("result=%q want=PENDING", row[10])
	}
}

func TestContents_MissingFileIsEmpty(t *testing.T) {
	m := NewCSV(filepath.Join(t.TempDir(), "nothing-yet.csv"))
	data, err := m.Contents()
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("data=%q want empty", data)
	}
}
