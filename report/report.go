// Package report renders tuning results for humans and machines: a text
// leaderboard, a JSON export and a validation-curve plot.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
	"github.com/knsamati/modeltune/tune"
)

// Report is the serializable account of one tuning run.
type Report struct {
	RunID       string              `json:"run_id"`
	Metric      string              `json:"metric"`
	Strategy    tune.Strategy       `json:"strategy"`
	Best        tune.Config         `json:"best"`
	Summaries   []tune.ConfigSummary `json:"summaries"`
	TestMetrics map[string]float64  `json:"test_metrics,omitempty"`
	Records     []tune.MetricRecord `json:"records"`
	ElapsedMs   int64               `json:"elapsed_ms"`
}

// FromResult assembles a Report from a finished run.
func FromResult(res *tune.RunResult) (*Report, error) {
	if res == nil || res.Selection == nil {
		return nil, errors.NewValueError("report.FromResult", "run result is incomplete")
	}
	rep := &Report{
		RunID:     res.RunID,
		Metric:    res.Selection.Metric,
		Strategy:  res.Selection.Strategy,
		Best:      res.Selection.Best.Clone(),
		Summaries: res.Selection.Summaries,
		Records:   res.Table.Records(),
		ElapsedMs: res.Elapsed.Milliseconds(),
	}
	if res.Final != nil {
		rep.TestMetrics = res.Final.TestMetrics
	}
	return rep, nil
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "report: encode JSON")
	}
	return nil
}

// WriteText writes a human-readable leaderboard, best config first.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "metric\t%s (%s)\n", r.Metric, r.Strategy)
	fmt.Fprintf(tw, "best\t%s\n\n", r.Best.Key())

	fmt.Fprintln(tw, "config\tmean\tstd\tstderr\tfolds")
	for _, s := range r.Summaries {
		marker := ""
		if s.Config.Key() == r.Best.Key() {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%.6g\t%.6g\t%.6g\t%d\n",
			s.Config.Key(), marker, s.Mean, s.Std, s.StdErr, s.Folds)
	}

	if len(r.TestMetrics) > 0 {
		fmt.Fprintln(tw, "\ntest metric\tvalue")
		for _, name := range sortedKeys(r.TestMetrics) {
			fmt.Fprintf(tw, "%s\t%.6g\n", name, r.TestMetrics[name])
		}
	}

	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "report: write text")
	}
	return nil
}

// direction resolves the metric direction for plot labels; unknown
// metrics default to lower-is-better.
func (r *Report) direction() metrics.Direction {
	if m, err := metrics.ByName(r.Metric); err == nil {
		return m.Direction
	}
	return metrics.LowerIsBetter
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
