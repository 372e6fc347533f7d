package formatter

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

var boldMarkdown = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// Emphasize renders **bold** markdown spans with the bold style and drops
// the asterisks.
func Emphasize(text string) string {
	return boldMarkdown.ReplaceAllStringFunc(text, func(m string) string {
		return Bold(m[2 : len(m)-2])
	})
}
