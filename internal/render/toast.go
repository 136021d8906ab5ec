package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	domcase "github.com/nyaybodh/nyaybodh/internal/domain/casefile"
	"github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

var toastStyles = map[search.NotificationKind]lipgloss.Style{
	search.NotifyLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	search.NotifySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	search.NotifyInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	search.NotifyError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var toastIcons = map[search.NotificationKind]string{
	search.NotifyLoading: "…",
	search.NotifySuccess: "✓",
	search.NotifyInfo:    "i",
	search.NotifyError:   "✗",
}

// Toaster prints notifications as single lines.
type Toaster struct {
	mu sync.Mutex
	w  io.Writer
}

// NewToaster writes toasts to w, usually stderr.
func NewToaster(w io.Writer) *Toaster {
	return &Toaster{w: w}
}

// Notify implements search.Notifier.
func (t *Toaster) Notify(n search.Notification) {
	style, ok := toastStyles[n.Kind]
	if !ok {
		style = lipgloss.NewStyle()
	}
	line := style.Render(toastIcons[n.Kind] + " " + n.Message)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, line)
}

// Recommendations renders a target case and its similar cases.
func Recommendations(r domcase.Recommendations) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recommendations for " + r.Target.Title()))
	b.WriteString("\n")
	if len(r.Recommended) == 0 {
		b.WriteString(emptyStyle.Render("No similar cases found."))
		b.WriteString("\n")
		return b.String()
	}
	for i, c := range r.Recommended {
		var body strings.Builder
		body.WriteString(caseStyle.Render(fmt.Sprintf("#%d %s", i+1, c.Title())))
		body.WriteString("\n")
		if c.Summary != "" {
			body.WriteString(truncate(c.Summary, summaryWidth))
			body.WriteString("\n")
		}
		body.WriteString(metaStyle.Render("ID: " + c.UUID))
		b.WriteString(blockStyle.Render(body.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// Users renders an account table.
func Users(users []domain.User) string {
	if len(users) == 0 {
		return emptyStyle.Render("No users.") + "\n"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-32s %-24s %-6s %s", "ID", "EMAIL", "NAME", "ROLE", "VERIFIED")))
	b.WriteString("\n")
	for _, u := range users {
		fmt.Fprintf(&b, "%-6d %-32s %-24s %-6s %t\n", u.ID, u.Email, u.FullName, u.Role, u.IsVerified)
	}
	return b.String()
}
