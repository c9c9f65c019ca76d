package export

import (
	"bytes"
	"fmt"
	"html/template"
)

var printTmpl = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #007bff; color: white; }
h1 { text-align: center; }
</style>
</head>
<body onload="window.print()">
<h1>{{.Title}}</h1>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// PrintHTML renders t as a standalone page that opens the print dialog.
func PrintHTML(t Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := printTmpl.Execute(&buf, t); err != nil {
		return nil, fmt.Errorf("rendering print view: %w", err)
	}
	return buf.Bytes(), nil
}
