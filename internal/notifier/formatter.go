package notifier

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"SignalSentinel/internal/model"
)

// DefaultCurrency prefixes prices in reports.
const DefaultCurrency = "₹"

// price renders v with exactly two decimals.
func price(currency string, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return currency + decimal.NewFromFloat(v).StringFixed(2)
}

func number(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func icon(s model.Signal) string {
	switch s.Kind {
	case model.KindVolumeSurge:
		return "🔊"
	case model.KindNearSupport:
		return "🛡️"
	case model.KindResistanceBreakout:
		return "🚀"
	case model.KindBelowS1, model.KindAboveR1:
		return "⚠️"
	}
	switch s.Category {
	case model.CategoryCandlestick:
		return "🕯️"
	case model.CategoryChart:
		return "📐"
	}
	switch s.Direction {
	case model.Bullish:
		return "🟢"
	case model.Bearish:
		return "🔴"
	default:
		return "•"
	}
}

// FormatAlert renders an alert as a Telegram HTML message:
//
//	📈 SYMBOL Alert:
//	<indicator lines>
//
//	<pattern lines>
//
//	<level lines>
//
//	Close: ₹x | RSI: y
//	Pivot: ₹p | S1: ... | R2: ...
//	🎯 Target: ₹t | 🔻 Stop Loss: ₹s
func FormatAlert(a *model.Alert, currency string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> Alert:\n", html.EscapeString(a.Symbol)))

	var section model.SignalCategory
	for i, s := range a.Signals {
		group := s.Category
		if s.IsPattern() {
			group = model.CategoryCandlestick
		}
		if i > 0 && group != section {
			b.WriteString("\n")
		}
		section = group
		b.WriteString(fmt.Sprintf("%s %s\n", icon(s), html.EscapeString(s.Label)))
	}

	b.WriteString(fmt.Sprintf("\nClose: %s | RSI: %s\n", price(currency, a.Close), number(a.RSI, 1)))
	if p := a.Pivots; p != nil {
		b.WriteString(fmt.Sprintf("Pivot: %s | S1: %s | S2: %s | R1: %s | R2: %s\n",
			price(currency, p.Pivot), price(currency, p.S1), price(currency, p.S2),
			price(currency, p.R1), price(currency, p.R2)))
	}
	if l := a.Levels; l != nil {
		b.WriteString(fmt.Sprintf("🎯 Target: %s | 🔻 Stop Loss: %s\n",
			price(currency, l.Target), price(currency, l.StopLoss)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatQuiet answers an on-demand check that did not trigger.
func FormatQuiet(symbol string, close, rsi float64, currency string) string {
	return fmt.Sprintf("🔍 <b>%s</b>: no signals\nClose: %s | RSI: %s",
		html.EscapeString(symbol), price(currency, close), number(rsi, 1))
}

// FormatScanSummary renders the end-of-scan message.
func FormatScanSummary(s model.ScanSummary) string {
	var b strings.Builder
	if len(s.Alerted) == 0 {
		b.WriteString("✅ Scan complete: no signals today.\n")
	} else {
		b.WriteString(fmt.Sprintf("✅ Scan complete: %d alert(s) sent.\n", len(s.Alerted)))
		b.WriteString(html.EscapeString(strings.Join(s.Alerted, ", ")))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Scanned %d | Evaluated %d | Skipped %d | Failed %d",
		s.Total, s.Evaluated, s.Skipped, s.Failed))
	if s.Suppressed > 0 {
		b.WriteString(fmt.Sprintf(" | Repeats suppressed %d", s.Suppressed))
	}
	if s.Undelivered > 0 {
		b.WriteString(fmt.Sprintf(" | Undelivered %d", s.Undelivered))
	}
	b.WriteString(fmt.Sprintf("\n⏱ %s | %s", s.Duration.Round(time.Millisecond), s.Trigger))
	return b.String()
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// StripHTML turns a Telegram HTML message into plain text.
func StripHTML(text string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(text, ""))
}
