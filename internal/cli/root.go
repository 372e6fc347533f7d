package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/spotsurfer/internal/assistant"
	"github.com/alexanderramin/spotsurfer/internal/push"
)

// AssistantService answers questions and previews prompts.
type AssistantService interface {
	Ask(ctx context.Context, req assistant.AskRequest) (*assistant.AskResponse, error)
	Preview(ctx context.Context, req assistant.AskRequest) (string, error)
}

// Broadcaster sends a notification to every subscriber.
type Broadcaster interface {
	Broadcast(ctx context.Context, n push.Notification) (push.BroadcastResult, error)
}

// App holds what CLI commands need. Nil fields disable their commands.
type App struct {
	Assistant AssistantService
	Push      Broadcaster
	// Serve runs the HTTP server until ctx is cancelled.
	Serve func(ctx context.Context) error
	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "spot" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "spot",
		Short:         "SpotSurfer parking assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newAskCmd(app),
		newPromptCmd(app),
		newChatCmd(app),
		newNotifyCmd(app),
		newVAPIDKeysCmd(),
	)

	return root
}
