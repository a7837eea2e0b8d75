package bot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// formatLargeNumber abbreviates values from a thousand upward (K, M, B) and
// prints smaller ones with two decimals and thousands separators.
func formatLargeNumber(num float64) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return "0"
	}
	abs := math.Abs(num)
	sign := ""
	if num < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%s%.2fB", sign, abs/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%s%.2fM", sign, abs/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%s%.2fK", sign, abs/1e3)
	}
	return sign + groupThousands(strconv.FormatFloat(abs, 'f', 2, 64))
}

func formatNumberWithCommas(num float64) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return "0.00"
	}
	s := strconv.FormatFloat(math.Abs(num), 'f', 2, 64)
	if num < 0 && s != "0.00" {
		return "-" + groupThousands(s)
	}
	return groupThousands(s)
}

// groupThousands inserts commas into the integer part of a plain decimal string.
func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// formatChange renders "+$1.50K (+12.00%)".
func formatChange(delta, percent float64) string {
	diffSign, pctSign := "", ""
	if delta >= 0 {
		diffSign = "+"
	}
	if percent >= 0 {
		pctSign = "+"
	}
	return fmt.Sprintf("%s$%s (%s%.2f%%)", diffSign, formatLargeNumber(delta), pctSign, percent)
}

func formatPrice(price float64) string {
	if price >= 1 {
		return formatNumberWithCommas(price)
	}
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func formatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006, 15:04:05")
}

func formatShortTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01, 15:04")
}

func formatUntil(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func orNotSet(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not set"
	}
	return s
}
