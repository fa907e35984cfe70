package codegen

import "text/template"

var fileTemplate = template.Must(template.New("file").Parse(`{{.Header}}
{{.SchemaLine}}

package {{.Package}}

import (
{{- range .Std}}
	{{.}}
{{- end}}
{{range .ThirdParty}}
	{{.}}
{{- end}}
)

{{.Body}}
`))
