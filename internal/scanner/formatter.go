package scanner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"ZoneScout/internal/model"
)

// FormatReport renders a scan result as a plain-text report.
func FormatReport(r *Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== Confluence scan: %s | %s ===\n",
		r.Symbol, r.AnalysisTime.Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("scan %s via %s\n\n", r.ScanID, r.Fetcher))

	m := r.Metrics
	b.WriteString(fmt.Sprintf("Price: %s | ATR(d): %.2f | ATR(15m): %.2f\n",
		humanize.CommafWithDigits(m.CurrentPrice, 2), m.ATRDaily, m.ATRM15))
	b.WriteString(fmt.Sprintf("Scan range: %s .. %s\n\n",
		humanize.CommafWithDigits(m.ScanLow, 2), humanize.CommafWithDigits(m.ScanHigh, 2)))

	b.WriteString(fmt.Sprintf("Inputs: %d across %d sources", r.InputCount, len(r.SourceCounts)))
	if len(r.SourceCounts) > 0 {
		keys := make([]model.SourceType, 0, len(r.SourceCounts))
		for st := range r.SourceCounts {
			keys = append(keys, st)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%d", k, r.SourceCounts[k])
		}
		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	b.WriteString("\n\n")

	if len(r.Zones) == 0 {
		b.WriteString("No zones found in scan range.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Zones (%d, nearest first):\n", len(r.Zones)))
	for _, z := range r.Zones {
		capped := ""
		if z.WidthCapped {
			capped = " [capped]"
		}
		b.WriteString(fmt.Sprintf("  %s %s  %.2f .. %.2f  (center %.2f, score %.1f, %d inputs, %s away)%s\n",
			z.Level, z.Type, z.Low, z.High, z.Center, z.Score,
			len(z.Inputs), humanize.CommafWithDigits(z.DistanceFromPrice, 2), capped))
	}
	return b.String()
}
