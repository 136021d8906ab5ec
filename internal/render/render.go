// Package render draws result pages and notifications for the terminal.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/nyaybodh/nyaybodh/internal/domain/search/facet"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/filter"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
	"github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

const summaryWidth = 240

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	caseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")).
			Margin(1, 0)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// Page renders the sidebar followed by the visible results.
func Page(v search.View) string {
	var b strings.Builder
	b.WriteString(Sidebar(v.Facets, v.Selection))
	b.WriteString("\n")
	b.WriteString(Results(v))
	return b.String()
}

// Results renders the result list, or the empty or error state.
func Results(v search.View) string {
	var b strings.Builder

	st := v.State
	if st.Status == search.StatusIdle {
		b.WriteString(emptyStyle.Render("Enter a query to search case law."))
		b.WriteString("\n")
		return b.String()
	}

	title := fmt.Sprintf("%s search: %q", label(st.Type), st.Query)
	if st.FromCache {
		title += " (cached)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if st.HasError() {
		b.WriteString(errorStyle.Render(st.Message))
		b.WriteString("\n")
		return b.String()
	}
	if v.NoResults() {
		b.WriteString(headerStyle.Render("No Results Found"))
		b.WriteString("\n")
		msg := search.MessageEmptyState
		if st.Results.Len() > 0 {
			msg = "No results match the selected filters."
		}
		b.WriteString(emptyStyle.Render(msg))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(metaStyle.Render(fmt.Sprintf("%d of %d results", v.Visible.Len(), st.Results.Len())))
	b.WriteString("\n\n")

	if v.Visible.Type() == mode.Semantic {
		for i, r := range v.Visible.Semantics() {
			b.WriteString(semanticBlock(i+1, r))
			b.WriteString("\n")
		}
		return b.String()
	}
	for i, r := range v.Visible.Entities() {
		b.WriteString(entityBlock(i+1, r))
		b.WriteString("\n")
	}
	return b.String()
}

func entityBlock(n int, r result.Entity) string {
	var c strings.Builder
	name := r.CaseName
	if name == "" {
		name = partyLine(r.Petitioner, r.Respondent)
	}
	c.WriteString(caseStyle.Render(fmt.Sprintf("#%d %s", n, name)))
	c.WriteString("\n")
	if r.Entities != "" {
		c.WriteString("Entities: " + r.Entities + "\n")
	}
	c.WriteString(truncate(r.Summary, summaryWidth))
	c.WriteString("\n")
	c.WriteString(metaStyle.Render("ID: " + r.UUID))
	return blockStyle.Render(c.String())
}

func semanticBlock(n int, r result.Semantic) string {
	var c strings.Builder
	pet, _ := r.Metadata.Get(result.Petitioner)
	res, _ := r.Metadata.Get(result.Respondent)
	name := partyLine(pet, res)
	if name == "" {
		name = r.Title
	}
	if name == "" {
		name = r.FileName
	}
	c.WriteString(caseStyle.Render(fmt.Sprintf("#%d %s", n, name)))
	c.WriteString("\n")

	var meta []string
	for _, k := range []string{result.Date, result.Court, result.Judge, result.CaseNumber} {
		if v, ok := r.Metadata.Get(k); ok {
			meta = append(meta, k+": "+v)
		}
	}
	if len(meta) > 0 {
		c.WriteString(strings.Join(meta, " | "))
		c.WriteString("\n")
	}
	c.WriteString(truncate(r.Summary, summaryWidth))
	c.WriteString("\n")
	footer := "ID: " + r.UUID
	if r.Score > 0 {
		footer += fmt.Sprintf(" | Score: %.3f", r.Score)
	}
	c.WriteString(metaStyle.Render(footer))
	return blockStyle.Render(c.String())
}

// Sidebar renders the facets with the selected values marked.
func Sidebar(f facet.Options, sel filter.Selection) string {
	if f.IsEmpty() {
		return ""
	}
	var b strings.Builder
	sections := []struct {
		title  string
		dim    filter.Dimension
		values []string
	}{
		{"Year", filter.Date, f.Years},
		{"Party", filter.Party, f.Parties},
		{"Judge", filter.Judge, f.Judges},
	}
	for _, s := range sections {
		if len(s.values) == 0 {
			continue
		}
		b.WriteString(headerStyle.Render(s.title))
		b.WriteString("\n")
		for _, v := range s.values {
			if sel.Has(s.dim, v) {
				b.WriteString(selectedStyle.Render("  [x] " + v))
			} else {
				b.WriteString("  [ ] " + v)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func label(t mode.Type) string {
	if t == mode.Semantic {
		return "Semantic"
	}
	return "Entity"
}

func partyLine(petitioner, respondent string) string {
	switch {
	case petitioner != "" && respondent != "":
		return petitioner + " v. " + respondent
	case petitioner != "":
		return petitioner
	default:
		return respondent
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
