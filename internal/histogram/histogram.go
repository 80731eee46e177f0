// Package histogram renders an estimator.Results as the kind of
// fixed-width terminal report sentra's CLI commands print for their own
// scan and job summaries: a couple of headline numbers followed by a
// bar per bucket. It is purely a presentation layer — nothing here feeds
// back into the checker or interpreter.
package histogram

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"sudice/internal/estimator"
)

const barWidth = 40

// Render writes a human-readable report of r to w.
func Render(w io.Writer, r *estimator.Results) error {
	headline := color.New(color.FgCyan, color.Bold)
	headline.Fprintf(w, "run %s\n", r.RunID)

	fmt.Fprintf(w, "  range   [%d, %d]\n", r.Min, r.Max)
	fmt.Fprintf(w, "  samples %s\n", humanize.Comma(r.Total))
	fmt.Fprintf(w, "  mean    %.4f\n", r.EV)
	fmt.Fprintf(w, "  stddev  %.4f\n", r.SD)
	fmt.Fprintln(w)

	var peak uint64
	for _, c := range r.Hist {
		if c > peak {
			peak = c
		}
	}
	bar := color.New(color.FgGreen)
	for i, c := range r.Hist {
		value := r.Min + int64(i)
		frac := 0.0
		if peak > 0 {
			frac = float64(c) / float64(peak)
		}
		filled := int(frac * float64(barWidth))
		fmt.Fprintf(w, "%6d | ", value)
		bar.Fprint(w, strings.Repeat("#", filled))
		fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", barWidth-filled), humanize.Comma(int64(c)))
	}
	return nil
}
