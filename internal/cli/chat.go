package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/spotsurfer/internal/assistant"
	"github.com/alexanderramin/spotsurfer/internal/cli/formatter"
)

func newChatCmd(app *App) *cobra.Command {
	var (
		flags tripFlags
		trip  bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Spot in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Assistant == nil {
				return errAssistantDisabled
			}
			if !app.interactive() {
				return errors.New("chat needs an interactive terminal; use 'spot ask' instead")
			}
			if trip {
				if err := tripForm(&flags).Run(); err != nil {
					return err
				}
			}
			m := newChatModel(cmd.Context(), app.Assistant, &flags, cmd.Flags())
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
	flags.bind(cmd.Flags())
	cmd.Flags().BoolVar(&trip, "trip", false, "fill in trip details with a form before chatting")
	return cmd
}

// answerMsg carries the result of one Ask call back to the model.
type answerMsg struct {
	resp *assistant.AskResponse
	err  error
}

// chatModel is a scrolling transcript with an input line.
type chatModel struct {
	ctx   context.Context
	asker AssistantService
	flags *tripFlags
	fs    *pflag.FlagSet

	input textinput.Model
	spin  spinner.Model
	view  viewport.Model

	transcript []string
	waiting    bool
}

func newChatModel(ctx context.Context, asker AssistantService, flags *tripFlags, fs *pflag.FlagSet) *chatModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.Placeholder = "Where should I park near Lionshead Village?"
	ti.CharLimit = 500

	sp := spinner.New(spinner.WithSpinner(formatter.ProgressSpinner))
	sp.Style = formatter.StylePurple

	m := &chatModel{
		ctx:   ctx,
		asker: asker,
		flags: flags,
		fs:    fs,
		input: ti,
		spin:  sp,
		view:  viewport.New(80, 20),
	}
	m.transcript = append(m.transcript, formatter.FormatChatWelcome(flags.summary()))
	m.refresh()
	return m
}

func (m *chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-3, 1)
		m.input.Width = max(msg.Width-8, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.transcript = append(m.transcript, formatter.FormatChatError(msg.err))
		} else {
			m.transcript = append(m.transcript, formatter.FormatChatAnswer(msg.resp.Response))
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) View() string {
	var b strings.Builder
	b.WriteString(m.view.View())
	b.WriteString("\n")
	if m.waiting {
		b.WriteString(m.spin.View())
		b.WriteString(formatter.Dim(" Spot is checking conditions..."))
	} else {
		b.WriteString(formatter.StylePurple.Render("you"))
		b.WriteString(formatter.Dim("> "))
		b.WriteString(m.input.View())
	}
	return b.String()
}

func (m *chatModel) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	q := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	switch strings.ToLower(q) {
	case "":
		return m, nil
	case "/quit", "/exit", "/q":
		return m, tea.Quit
	}

	m.transcript = append(m.transcript, formatter.FormatChatUser(q))
	m.waiting = true
	m.refresh()
	return m, tea.Batch(m.spin.Tick, m.ask(q))
}

// ask returns a command that answers q with the session's trip context.
func (m *chatModel) ask(q string) tea.Cmd {
	req := m.flags.request(m.fs, q)
	return func() tea.Msg {
		resp, err := m.asker.Ask(m.ctx, req)
		return answerMsg{resp: resp, err: err}
	}
}

func (m *chatModel) refresh() {
	m.view.SetContent(strings.Join(m.transcript, "\n\n"))
	m.view.GotoBottom()
}
