package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/instrument"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
)

const signalTimeLayout = "2006-01-02 15:04:05"

// FormatTimeframe maps the raw chart timeframe to its display form. Unmapped
// values pass through verbatim.
func FormatTimeframe(tf string) string {
	tf = strings.TrimSpace(tf)
	switch tf {
	case "60":
		return "1H"
	case "240":
		return "4H"
	case "D", "1D":
		return "1 Day"
	}
	if tf != "" && isDigits(tf) {
		return tf + "m"
	}
	return tf
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// formatSignalTime reformats the caller's nominal timestamp for display.
// Anything that does not parse is shown as-is; display degrades, it never
// errors.
func formatSignalTime(raw string) string {
	parsed, err := time.Parse(signalTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return parsed.Format("01/02/2006")
}

// FormatOpen renders the channel message for a newly opened signal. Pure:
// same signal, same text.
func FormatOpen(sig *models.Signal, conv instrument.Convention) string {
	var b strings.Builder
	b.WriteString("🚨 <b>~ ML Signal ~</b>🤖\n\n")
	fmt.Fprintf(&b, "📊 <b>Pair:</b>           %s\n", sig.Ticker)
	fmt.Fprintf(&b, "↕️ <b>Direction:</b>    %s\n", sig.Prediction)
	fmt.Fprintf(&b, "💵 <b>Entry:</b>          %s\n", conv.FormatPrice(sig.OpenPrice))
	fmt.Fprintf(&b, "🛑 <b>SL:</b>              %s\n", conv.FormatPrice(sig.SL))
	fmt.Fprintf(&b, "✅ <b>TP:</b>              %s\n", conv.FormatPrice(sig.TP))
	fmt.Fprintf(&b, "⏰ <b>TF:</b>              %s\n", FormatTimeframe(sig.Timeframe))
	fmt.Fprintf(&b, "📅 <b>Date:</b>          %s", formatSignalTime(sig.SignalTime))
	if id := strings.TrimSpace(sig.SignalID); id != "" && !strings.EqualFold(id, models.SignalIDNone) {
		fmt.Fprintf(&b, "\n🔖 <b>ID:</b>              %s", id)
	}
	return b.String()
}

// FormatClose renders the channel message for a closed signal.
func FormatClose(ticker, result string, pips decimal.Decimal, signalID string) string {
	marker := "✅"
	if result == models.ResultLoss {
		marker = "❌"
	}
	sign := ""
	if pips.Sign() > 0 {
		sign = "+"
	}

	var b strings.Builder
	b.WriteString("🏁 <b>~ Signal Closed ~</b>\n\n")
	fmt.Fprintf(&b, "📊 <b>Pair:</b>       %s\n", ticker)
	fmt.Fprintf(&b, "%s <b>Result:</b>   %s\n", marker, result)
	fmt.Fprintf(&b, "📈 <b>Pips:</b>       %s%s", sign, pips.StringFixed(1))
	if id := strings.TrimSpace(signalID); id != "" {
		fmt.Fprintf(&b, "\n🔖 <b>ID:</b>          %s", id)
	}
	return b.String()
}
