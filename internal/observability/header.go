package observability

import (
	"fmt"
	"net/http"
	"time"
)

// AppendServerTiming adds one Server-Timing entry; zero durations and empty
// descriptions are left out.
func AppendServerTiming(w http.ResponseWriter, name string, durMs float64, desc string) {
	entry := name
	if durMs > 0 {
		entry += fmt.Sprintf(";dur=%.2f", durMs)
	}
	if desc != "" {
		entry += fmt.Sprintf(";desc=%q", desc)
	}
	if entry == name {
		return
	}
	w.Header().Add("Server-Timing", entry)
}

func SetIfPos(w http.ResponseWriter, key string, ms float64) {
	if ms > 0 {
		w.Header().Set(key, fmt.Sprintf("%.2f", ms))
	}
}

// SinceMs returns the time elapsed since t in fractional milliseconds.
func SinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
