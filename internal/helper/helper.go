package helper

import (
	"strings"
	"time"
)

// NormInterval приводит интервал к нотации Bybit v5: "1","3","5","15","30",
// "60","120","240","360","720","D","W","M".
func NormInterval(raw string) string {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "1m":
		return "1"
	case "3m":
		return "3"
	case "5m":
		return "5"
	case "15m":
		return "15"
	case "30m":
		return "30"
	case "1h", "60m":
		return "60"
	case "2h":
		return "120"
	case "4h":
		return "240"
	case "6h":
		return "360"
	case "12h":
		return "720"
	case "d", "1d":
		return "D"
	case "w", "1w":
		return "W"
	case "mth", "1mth":
		return "M"
	default:
		return strings.ToUpper(s)
	}
}

// ValidInterval — допустимые значения после нормализации.
func ValidInterval(interval string) bool {
	switch NormInterval(interval) {
	case "1", "3", "5", "15", "30", "60", "120", "240", "360", "720", "D", "W", "M":
		return true
	}
	return false
}

// IntervalDuration — длительность интервала (для детекта гэпов в close_time).
func IntervalDuration(interval string) time.Duration {
	switch NormInterval(interval) {
	case "D":
		return 24 * time.Hour
	case "W":
		return 7 * 24 * time.Hour
	case "M":
		return 30 * 24 * time.Hour
	default:
		n := 0
		for _, r := range NormInterval(interval) {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int(r-'0')
		}
		return time.Duration(n) * time.Minute
	}
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
