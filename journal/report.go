package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/rustyeddy/quantlab/backtest"
)

// RunReport captures one backtest run for the org-mode research log.
type RunReport struct {
	RunID    string
	Created  time.Time
	Dataset  string
	Strategy string

	Start time.Time
	End   time.Time

	// Execution parameters worth recording alongside the numbers.
	StopATR      float64
	RewardRisk   float64
	TrailATR     float64
	RiskFraction float64
	StartCapital float64
	EndCapital   float64

	Summary backtest.Summary
	Halt    string // empty when the run simply ran out of bars

	Notes []string
}

// NewRunReport fills a report from a finished run.
func NewRunReport(runID, dataset, strategy string, res backtest.Result) RunReport {
	r := RunReport{
		RunID:      runID,
		Created:    time.Now(),
		Dataset:    dataset,
		Strategy:   strategy,
		EndCapital: res.Capital,
		Summary:    res.Summary,
		Halt:       string(res.Halt),
	}
	if len(res.Equity) > 0 {
		r.Start = res.Equity[0].Time
		r.End = res.Equity[len(res.Equity)-1].Time
	}
	return r
}

var reportFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// WriteOrg renders the report to path as an org-mode entry.
func (r RunReport) WriteOrg(path string) error {
	t, err := template.New("run").Funcs(reportFuncs).Parse(runOrgTemplate)
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const runOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Dataset}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START:       {{.Start.Format "2006-01-02 15:04"}}
:END:         {{.End.Format "2006-01-02 15:04"}}
:TRADES:      {{.Summary.Trades}}
:WINS:        {{.Summary.Wins}}
:WIN_RATE:    {{printf "%.2f" .Summary.WinRate}}
:NET_POINTS:  {{printf "%.2f" .Summary.Points}}
:NET_DOLLARS: {{printf "%.2f" .Summary.Dollars}}
:FEES:        {{printf "%.2f" .Summary.Fees}}
:HALT:        {{if .Halt}}{{.Halt}}{{else}}none{{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Parameters
| Parameter     | Value |
|---------------+-------|
| Stop (ATR)    | {{printf "%.2f" .StopATR}} |
| R:R           | {{printf "%.2f" .RewardRisk}} |
| Trail (ATR)   | {{printf "%.2f" .TrailATR}} |
| Risk fraction | {{printf "%.4f" .RiskFraction}} |
| Start capital | {{printf "%.2f" .StartCapital}} |
| End capital   | {{printf "%.2f" .EndCapital}} |

** Performance Summary
- Net P/L:    *{{printf "%.2f" .Summary.Dollars}}*
- Win Rate:   *{{printf "%.2f" .Summary.WinRate}}%*
- Trades:     *{{.Summary.Trades}}*
{{- if .Halt}}
- Halted:     *{{.Halt}}*
{{- end}}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
