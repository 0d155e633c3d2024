package recipe

import (
	"bytes"
	"html/template"

	"Pantry-Service/domain"
)

const shoppingListSubject = "Your shopping list"

var shoppingListTemplate = template.Must(template.New("shopping_list").Parse(`<h2>Shopping list</h2>
<p>For: {{range $i, $r := .Recipes}}{{if $i}}, {{end}}{{$r.RecipeName}}{{end}}</p>
<ul>
{{- range .TotalShortages}}
<li>{{.Name}}: {{.Quantity}}{{if .Unit}} {{.Unit}}{{end}}</li>
{{- end}}
</ul>
`))

func renderShoppingList(check domain.CheckInventoryResponse) (string, error) {
	var buf bytes.Buffer
	if err := shoppingListTemplate.Execute(&buf, check); err != nil {
		return "", err
	}
	return buf.String(), nil
}
