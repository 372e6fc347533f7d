package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FormatAnswer renders an assistant answer for the terminal.
func FormatAnswer(answer string, fallback bool) string {
	title := "Spot"
	if fallback {
		title = "Spot (offline)"
	}
	return RenderBox(title, Emphasize(strings.TrimSpace(answer))) + "\n"
}

// FormatPrompt renders a prompt preview with its size.
func FormatPrompt(prompt string) string {
	var b strings.Builder
	b.WriteString(Header("Prompt"))
	b.WriteString("\n")
	b.WriteString(prompt)
	b.WriteString("\n\n")
	b.WriteString(Dim(fmt.Sprintf("%d characters", len(prompt))))
	b.WriteString("\n")
	return b.String()
}

// FormatBroadcast summarizes a push broadcast.
func FormatBroadcast(sent, failed, removed int) string {
	line := fmt.Sprintf("%s sent, %s failed", StyleGreen.Render(fmt.Sprint(sent)), failedStyle(failed).Render(fmt.Sprint(failed)))
	if removed > 0 {
		line += Dim(fmt.Sprintf(" (%d expired subscriptions removed)", removed))
	}
	return line + "\n"
}

func failedStyle(n int) lipgloss.Style {
	if n > 0 {
		return StyleRed
	}
	return StyleDim
}

// FormatVAPIDKeys prints a key pair as .env lines.
func FormatVAPIDKeys(publicKey, privateKey string) string {
	return fmt.Sprintf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", publicKey, privateKey)
}

// FormatChatUser renders the user's side of a chat turn.
func FormatChatUser(text string) string {
	return StylePurple.Render("you") + Dim("> ") + text
}

// FormatChatAnswer renders the assistant's side of a chat turn.
func FormatChatAnswer(text string) string {
	return StyleHeader.Render("spot") + Dim("> ") + Emphasize(strings.TrimSpace(text))
}

// FormatChatError renders a failed chat turn.
func FormatChatError(err error) string {
	return StyleRed.Render("error") + Dim("> ") + err.Error()
}

// FormatChatWelcome is the first line of a chat session.
func FormatChatWelcome(trip string) string {
	lines := []string{Header("Spot chat"), Dim("Ask about parking, weather or traffic. /quit to leave.")}
	if trip != "" {
		lines = append(lines, Dim("Trip: ")+trip)
	}
	return strings.Join(lines, "\n")
}
