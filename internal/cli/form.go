package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/spotsurfer/internal/cli/formatter"
)

// spotHuhTheme returns a huh theme matching the formatter palette.
func spotHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// tripForm collects the trip context a chat session starts with.
func tripForm(f *tripFlags) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Where are you now?").
				Placeholder("Denver").
				Value(&f.location),
			huh.NewInput().
				Title("Reservation destination").
				Description("Blank if you have no booking yet").
				Placeholder("Vail Village").
				Value(&f.destination),
			huh.NewInput().
				Title("Reservation date (YYYY-MM-DD)").
				Placeholder(time.Now().Format("2006-01-02")).
				Value(&f.date).
				Validate(validateOptionalDate),
		),
	).WithTheme(spotHuhTheme()).WithShowHelp(false)
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// summary describes the trip for the chat header.
func (f *tripFlags) summary() string {
	var parts []string
	if f.location != "" {
		parts = append(parts, "from "+f.location)
	}
	if f.destination != "" {
		parts = append(parts, "to "+f.destination)
	}
	if f.date != "" {
		parts = append(parts, "on "+f.date)
	}
	return strings.Join(parts, " ")
}
