// Package teatest drives a bubbletea model synchronously in tests.
//
// Update is called directly and the returned commands are run inline, so
// a whole exchange (keypress, provider call, rendered answer) completes
// before the next assertion. Commands that wait on timers, such as
// spinner ticks and cursor blinks, are dropped after a short timeout.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDepth bounds how many chained commands one Send may run.
const MaxDepth = 64

// cmdTimeout separates commands that return immediately from timer-driven ones.
const cmdTimeout = 20 * time.Millisecond

// Driver feeds messages to a model and drains its commands.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once the model asked the program to exit.
	Quitting bool
}

// New creates a Driver. A positive width and height send an initial
// WindowSizeMsg.
func New(t *testing.T, model tea.Model, width, height int) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	if width > 0 && height > 0 {
		d.Send(tea.WindowSizeMsg{Width: width, Height: height})
	}
	return d
}

// Send passes msg through Update and drains the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	next, cmd := d.Model.Update(msg)
	d.Model = next
	d.drain(cmd, 0)
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Submit types s and presses Enter.
func (d *Driver) Submit(s string) {
	d.T.Helper()
	d.Type(s)
	d.Send(tea.KeyMsg{Type: tea.KeyEnter})
}

// Press sends a special key such as tea.KeyEsc.
func (d *Driver) Press(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

// View renders the current model.
func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDepth {
		d.T.Logf("teatest: command chain deeper than %d, stopping", MaxDepth)
		return
	}

	msg := run(cmd)
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
	default:
		next, nextCmd := d.Model.Update(msg)
		d.Model = next
		d.drain(nextCmd, depth+1)
	}
}

// run returns nil for commands that do not finish within cmdTimeout.
func run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}
