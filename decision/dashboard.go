package decision

import (
	"html/template"
	"net/http"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<title>quantlab decisions</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 4px 10px; text-align: right; }
th { background: #eee; }
td.buy { color: green; }
td.sell { color: red; }
</style>
</head>
<body>
<h2>Decision log ({{len .}} most recent first)</h2>
<table>
<tr><th>Time</th><th>Price</th><th>Resistance</th><th>Support</th>
<th>Short MA</th><th>Long MA</th><th>RSI</th><th>Decision</th><th>Reason</th></tr>
{{range .}}
<tr>
<td>{{.Time.Format "15:04:05"}}</td>
<td>{{printf "%.2f" .Snapshot.Price}}</td>
<td>{{printf "%.2f" .Snapshot.Resistance}}</td>
<td>{{printf "%.2f" .Snapshot.Support}}</td>
<td>{{printf "%.2f" .Snapshot.ShortMA}}</td>
<td>{{printf "%.2f" .Snapshot.LongMA}}</td>
<td>{{printf "%.2f" .Snapshot.RSI}}</td>
<td class="{{if eq .Decision "BUY"}}buy{{else if eq .Decision "SELL"}}sell{{end}}">{{.Decision}}</td>
<td>{{.Reason}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, s.recorder.List()); err != nil {
		s.logger.Printf("dashboard render: %v", err)
	}
}
