package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"solana-flex-card/internal/domain"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// FormatAmount renders a token amount with K/M/B magnitude suffixes.
// Below 1K the amount keeps two decimals with thousands grouping.
func FormatAmount(d decimal.Decimal) string {
	switch {
	case d.GreaterThanOrEqual(billion):
		return d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(2) + "M"
	case d.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(2) + "K"
	default:
		return groupThousands(d.StringFixed(2))
	}
}

// FormatUSD renders a dollar value. Sub-dollar values keep four decimals so
// micro-cap prices never collapse to $0.00.
func FormatUSD(d decimal.Decimal) string {
	switch {
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(2) + "M"
	case d.GreaterThanOrEqual(thousand):
		return "$" + d.Div(thousand).StringFixed(2) + "K"
	case d.GreaterThanOrEqual(decimal.New(1, 0)):
		return "$" + groupThousands(d.StringFixed(2))
	default:
		return "$" + d.StringFixed(4)
	}
}

// FormatMarketCap renders a market cap with single-decimal magnitude
// suffixes, or "N/A" when market data is unavailable.
func FormatMarketCap(mcap decimal.Decimal, available bool) string {
	if !available || mcap.IsZero() {
		return "N/A"
	}
	switch {
	case mcap.GreaterThanOrEqual(billion):
		return "$" + mcap.Div(billion).StringFixed(1) + "B"
	case mcap.GreaterThanOrEqual(million):
		return "$" + mcap.Div(million).StringFixed(1) + "M"
	case mcap.GreaterThanOrEqual(thousand):
		return "$" + mcap.Div(thousand).StringFixed(1) + "K"
	default:
		return "$" + mcap.StringFixed(0)
	}
}

// FormatDuration renders a hold duration as a two-unit string ("2y 3m",
// "5m 6d", "12d 4h"). NoHistory and Indeterminate get distinct labels so a
// fresh wallet is never confused with a failed history scan.
func FormatDuration(h domain.HoldDuration) string {
	switch h.Status {
	case domain.AcquisitionNoHistory:
		return "New holder"
	case domain.AcquisitionIndeterminate:
		return "Unknown"
	}

	days := int(h.Duration.Hours()) / 24
	switch {
	case days >= 365:
		return fmt.Sprintf("%dy %dm", days/365, (days%365)/30)
	case days >= 30:
		return fmt.Sprintf("%dm %dd", days/30, days%30)
	default:
		hours := int(h.Duration.Hours()) % 24
		return fmt.Sprintf("%dd %dh", days, hours)
	}
}

// HandsLabel maps a hold duration onto the badge bands shown under the
// DIAMOND HANDS stat.
func HandsLabel(h domain.HoldDuration) string {
	switch h.Status {
	case domain.AcquisitionNoHistory:
		return "NEW"
	case domain.AcquisitionIndeterminate:
		return "FRESH"
	}

	days := int(h.Duration.Hours()) / 24
	switch {
	case days >= 365:
		return "OG DIAMOND"
	case days >= 180:
		return "DIAMOND"
	case days >= 90:
		return "STRONG"
	case days >= 30:
		return "STEADY"
	default:
		return "FRESH"
	}
}

// FormatChange renders a 24h percentage change with an explicit sign.
func FormatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.1f%% 24h", pct)
	}
	return fmt.Sprintf("%.1f%% 24h", pct)
}

// FormatRank renders a holder rank, or "Unranked" when the wallet did not
// place in the snapshot.
func FormatRank(r domain.Rank) string {
	if !r.Ranked {
		return "Unranked"
	}
	return fmt.Sprintf("#%d", r.Position)
}

// groupThousands inserts comma separators into the integer part of a
// fixed-point decimal string.
func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	n := len(intPart)
	for i, ch := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if hasFrac {
		out += "." + frac
	}
	return out
}
