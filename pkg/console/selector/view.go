package selector

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/kadilac/pkg/console/theme"
)

// View renders the input line and, when open, the option list below it
func (m Model) View() string {
	box := theme.Field
	if m.focused {
		box = theme.FieldFocused
	}
	inner := m.width - 4
	if inner < 1 {
		inner = 1
	}

	var line string
	switch {
	case m.loading:
		line = m.spinner.View() + " " + theme.MutedText.Render("Loading…")
	case m.disabled:
		line = theme.MutedText.Render("…")
	case m.open:
		line = m.input.View()
	case m.selected != "":
		line = ansi.Truncate(m.Label(), inner, "…")
	default:
		line = theme.MutedText.Render(ansi.Truncate(m.Placeholder, inner, "…"))
	}

	out := box.Width(m.width - 2).Render(line)
	if m.open {
		out += "\n" + m.renderList(inner)
	}
	return out
}

// renderList draws a window of at most maxVisible options around the cursor
func (m Model) renderList(width int) string {
	items := m.Visible()
	if len(items) == 0 {
		return theme.MutedText.Render("  (no matches)")
	}

	start, count := m.window(len(items))

	var sb strings.Builder
	if start > 0 {
		sb.WriteString(theme.MutedText.Render("  ↑ more above"))
		sb.WriteString("\n")
	}
	for i := 0; i < count; i++ {
		idx := start + i
		label := ansi.Truncate(items[idx].Label, width, "…")
		if i > 0 {
			sb.WriteString("\n")
		}
		if idx == m.cursor {
			sb.WriteString(theme.ListCursor.Render("> ") + theme.ListItemFocused.Render(label))
		} else {
			sb.WriteString("  " + theme.ListItemNormal.Render(label))
		}
	}
	if start+count < len(items) {
		sb.WriteString("\n")
		sb.WriteString(theme.MutedText.Render("  ↓ more below"))
	}
	return sb.String()
}
