// Package report filters annotated entries into a ranked opportunity set and
// renders it as HTML.
package report

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// Thresholds gate which entries count as opportunities. Limit of 0 means no
// cap on the rendered rows.
type Thresholds struct {
	MinCrossingRate   float64 `toml:"min_crossing_rate"`
	MinCrossingMargin float64 `toml:"min_crossing_margin"`
	Limit             int     `toml:"limit"`
}

// RunInfo is the provenance footer stamped under every rendered report.
type RunInfo struct {
	Strategy     string
	ObservedAt   time.Time
	StartedAt    time.Time
	TotalMatches int
}

// Report is one finished filtering pass over an annotated run.
type Report struct {
	Entries []*domain.MatchedEntry
	Info    RunInfo
	Limits  Thresholds
}

// Builder filters and renders reports.
type Builder struct {
	limits Thresholds
	logger *slog.Logger
}

func NewBuilder(limits Thresholds, logger *slog.Logger) *Builder {
	return &Builder{
		limits: limits,
		logger: logger.With(slog.String("component", "report")),
	}
}

// Build keeps the entries that clear both crossing thresholds, preserving
// their order. Callers pass entries already ranked by score.
func (b *Builder) Build(ranked []*domain.MatchedEntry, info RunInfo) *Report {
	kept := make([]*domain.MatchedEntry, 0, len(ranked))
	for _, e := range ranked {
		if e.CrossingMarginRate < b.limits.MinCrossingRate {
			continue
		}
		if e.CrossingMargin < b.limits.MinCrossingMargin {
			continue
		}
		kept = append(kept, e)
		if b.limits.Limit > 0 && len(kept) == b.limits.Limit {
			break
		}
	}

	b.logger.Info("report built",
		slog.Int("candidates", len(ranked)),
		slog.Int("opportunities", len(kept)),
		slog.String("strategy", info.Strategy))

	return &Report{Entries: kept, Info: info, Limits: b.limits}
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
	"volume": func(e *domain.MatchedEntry) string {
		if e.VolumeApproximated {
			return fmt.Sprintf("~%.2f", e.Volume)
		}
		return fmt.Sprintf("%.2f", e.Volume)
	},
	"link": func(e *domain.MatchedEntry) string {
		switch {
		case e.SX != nil && e.SX.URL != "":
			return e.SX.URL
		case e.FC != nil && e.FC.URL != "":
			return e.FC.URL
		case e.DU != nil && e.DU.URL != "":
			return e.DU.URL
		}
		return ""
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>sneakarb report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th { background: #f0f0f0; }
td.name { text-align: left; }
footer { margin-top: 2em; color: #888; font-size: 0.85em; }
</style>
</head>
<body>
<h1>Arbitrage opportunities</h1>
{{if .Entries}}
<table>
<tr>
<th>Name</th><th>Style</th><th>Size</th><th>Action</th>
<th>Buy (ask)</th><th>Crossing margin</th><th>Crossing rate</th>
<th>Adding margin</th><th>Mid margin</th>
<th>Du target CNY</th><th>Score</th><th>Volume/day</th>
</tr>
{{range .Entries}}
<tr>
<td class="name">{{with link .}}<a href="{{.}}">{{end}}{{.Name}}{{if link .}}</a>{{end}}</td>
<td>{{.StyleID}}</td>
<td>{{.Size}}</td>
<td>{{.Action}}</td>
<td>{{if .SX}}{{money .SX.BestAsk}}{{end}}</td>
<td>{{money .CrossingMargin}}</td>
<td>{{percent .CrossingMarginRate}}</td>
<td>{{money .AddingMargin}}</td>
<td>{{money .MidMargin}}</td>
<td>{{if .DuTargetSellCNY}}{{money .DuTargetSellCNY}}{{end}}</td>
<td>{{printf "%.4f" .Score}}</td>
<td>{{volume .}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No opportunities found above thresholds (rate &ge; {{percent .Limits.MinCrossingRate}}, margin &ge; {{money .Limits.MinCrossingMargin}}).</p>
{{end}}
<footer>
strategy: {{.Info.Strategy}} |
matches: {{.Info.TotalMatches}} |
observed: {{.Info.ObservedAt.Format "2006-01-02 15:04:05 MST"}} |
generated: {{.Info.StartedAt.Format "2006-01-02 15:04:05 MST"}}
</footer>
</body>
</html>
`))

// Render writes the report as HTML.
func (r *Report) Render(w io.Writer) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

// RenderText writes a plain rendering for logs and text-only channels.
func (r *Report) RenderText(w io.Writer) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	if len(r.Entries) == 0 {
		printf("no opportunities found above thresholds (rate >= %.1f%%, margin >= %.2f)\n",
			r.Limits.MinCrossingRate*100, r.Limits.MinCrossingMargin)
	}
	for i, e := range r.Entries {
		printf("%3d. %-12s size %-5s %-8s margin %8.2f (%.1f%%) score %.4f\n",
			i+1, e.StyleID, e.Size, e.Action,
			e.CrossingMargin, e.CrossingMarginRate*100, e.Score)
	}
	printf("strategy: %s | matches: %d | observed: %s | generated: %s\n",
		r.Info.Strategy, r.Info.TotalMatches,
		r.Info.ObservedAt.Format("2006-01-02 15:04:05 MST"),
		r.Info.StartedAt.Format("2006-01-02 15:04:05 MST"))

	if err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}
	return nil
}
