package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain/docgen"
)

// Templates renders the document kinds table.
func Templates(templates []docgen.Template) string {
	if len(templates) == 0 {
		return emptyStyle.Render("No document templates.") + "\n"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %-52s %s", "KIND", "TITLE", "FIELDS")))
	b.WriteString("\n")
	for _, t := range templates {
		fmt.Fprintf(&b, "%-20s %-52s %d\n", t.Kind, t.Title, len(t.Fields))
	}
	return b.String()
}

// TemplateFields lists the answers a template needs. Repeated groups show <n> for the index.
func TemplateFields(t docgen.Template) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title + " (" + string(t.Kind) + ")"))
	b.WriteString("\n")

	fields := slices.Clone(t.Fields)
	slices.Sort(fields)
	for _, f := range fields {
		b.WriteString("  " + strings.ReplaceAll(f, "[]", "<n>"))
		if def, ok := t.Defaults[f]; ok {
			b.WriteString(metaStyle.Render(" default " + strconv.Quote(def)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
