package components

import (
	"fmt"
	"strings"

	"github.com/skillgenie/skillgenie/internal/ui/theme"
)

// MultiChoice renders a question's options. While answering, Selected is
// highlighted; once Reveal is set, the correct option is shown in green
// and a wrong Selected option in red.
type MultiChoice struct {
	Options  []string
	Selected int // -1 for none
	Correct  int
	Reveal   bool
}

// Label returns the letter shown before option i: A, B, C...
func Label(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// View renders one option per line.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s) %s", prefix, Label(i), opt)

		style := theme.Unselected
		switch {
		case m.Reveal && i == m.Correct:
			style = theme.Correct
		case m.Reveal && i == m.Selected:
			style = theme.Incorrect
		case m.Reveal:
			style = theme.Dimmed
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
