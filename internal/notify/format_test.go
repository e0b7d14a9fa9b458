package notify

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/instrument"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
)

func TestFormatTimeframe(t *testing.T) {
	cases := map[string]string{
		"60":  "1H",
		"240": "4H",
		"D":   "1 Day",
		"1D":  "1 Day",
		"15":  "15m",
		"5":   "5m",
		"W":   "W",
		"":    "",
	}
	for in, want := range cases {
		if got := FormatTimeframe(in); got != want {
			t.Fatalf("FormatTimeframe(%q)=%q want=%q", in, got, want)
		}
	}
}

func TestFormatOpen_PrecisionPerInstrument(t *testing.T) {
	sig := &models.Signal{
		Ticker:     "USDJPY",
		Prediction: models.PredictionBuy,
		OpenPrice:  decimal.RequireFromString("110.1"),
		SL:         decimal.RequireFromString("109.8"),
		TP:         decimal.RequireFromString("110.6"),
		Timeframe:  "60",
		SignalTime: "2026-02-10 16:00:00",
	}
	msg := FormatOpen(sig, instrument.Resolve(sig.Ticker))
	if !strings.Contains(msg, "110.100") {
		t.Fatalf("want 3-digit JPY entry, got:\n%s", msg)
	}
	if !strings.Contains(msg, "1H") {
		t.Fatalf("want mapped timeframe 1H, got:\n%s", msg)
	}
	if !strings.Contains(msg, "02/10/2026") {
		t.Fatalf("want reformatted date, got:\n%s", msg)
	}
}

func TestFormatOpen_BadTimePassesThrough(t *testing.T) {
	sig := &models.Signal{
		Ticker:     "EURUSD",
		Prediction: models.PredictionSell,
		OpenPrice:  decimal.RequireFromString("1.085"),
		SL:         decimal.RequireFromString("1.088"),
		TP:         decimal.RequireFromString("1.082"),
		Timeframe:  "15",
		SignalTime: "not-a-date",
	}
	msg := FormatOpen(sig, instrument.Resolve(sig.Ticker))
	if !strings.Contains(msg, "not-a-date") {
		t.Fatalf("unparseable time must pass through verbatim, got:\n%s", msg)
	}
}

func TestFormatClose_WinAndLoss(t *testing.T) {
	win := FormatClose("EURUSD", models.ResultWin, decimal.RequireFromString("50.0"), "sig-1")
	if !strings.Contains(win, "WIN") || !strings.Contains(win, "+50.0") || !strings.Contains(win, "sig-1") {
		t.Fatalf("win message:\n%s", win)
	}
	loss := FormatClose("EURUSD", models.ResultLoss, decimal.RequireFromString("-50.0"), "")
	if !strings.Contains(loss, "LOSS") || !strings.Contains(loss, "-50.0") {
		t.Fatalf("loss message:\n%s", loss)
	}
	if strings.Contains(loss, "ID:") {
		t.Fatalf("close without signal_id must omit the ID line:\n%s", loss)
	}
}

func TestFormatClose_Pure(t *testing.T) {
	a := FormatClose("GBPUSD", models.ResultWin, decimal.RequireFromString("12.3"), "x")
	b := FormatClose("GBPUSD", models.ResultWin, decimal.RequireFromString("12.3"), "x")
	if a != b {
		t.Fatalf("formatting must be deterministic:\n%s\n---\n%s", a, b)
	}
}
