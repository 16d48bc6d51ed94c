package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// printSummaries writes one row per portfolio.
func printSummaries(w io.Writer, names []string, summaries []analysis.Summary, metrics []model.Metrics) {
	tw := newTable(w)
	fmt.Fprintln(tw, "portfolio\twindows\tskipped\tmin%\tp25%\tmedian%\tp75%\tmax%\tneg%\tvol%\tfirst\tlast")
	for i, s := range summaries {
		skipped := 0
		for _, n := range metrics[i].Skipped {
			skipped += n
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t%.2f\t%s\t%s\n",
			names[i], s.Count, skipped,
			s.MinXIRR, s.P25XIRR, s.MedianXIRR, s.P75XIRR, s.MaxXIRR,
			s.NegativeShare*100, s.MeanVolatility,
			fmtDate(s.FirstAnchor), fmtDate(s.LastAnchor))
	}
	_ = tw.Flush()
}

// outputPath derives a per-portfolio file from path when several
// portfolios share one --out flag: results.csv -> results-<name>.csv.
func outputPath(path, portfolio string, multiple bool) string {
	if !multiple {
		return path
	}
	ext := filepath.Ext(path)
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, portfolio)
	return strings.TrimSuffix(path, ext) + "-" + slug + ext
}
