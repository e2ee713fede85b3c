package payment

import (
	"bytes"
	"html/template"
	"sort"
)

// checkoutTmpl renders the minimal auto-submitting checkout document. Every
// signed field becomes a hidden input; html/template handles attribute
// escaping so field values cannot break out of the markup.
var checkoutTmpl = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body>
<form id="ecpay-checkout" method="post" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
</form>
<script>document.getElementById("ecpay-checkout").submit();</script>
</body>
</html>
`))

type formField struct {
	Name  string
	Value string
}

// buildCheckoutForm serializes the signed parameter map into the checkout
// document posting to the given endpoint. Fields are emitted in sorted order
// so the output is deterministic.
func buildCheckoutForm(action string, fields map[string]string) ([]byte, error) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	data := struct {
		Action string
		Fields []formField
	}{Action: action}
	for _, n := range names {
		data.Fields = append(data.Fields, formField{Name: n, Value: fields[n]})
	}

	var buf bytes.Buffer
	if err := checkoutTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
