package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/spotsurfer/internal/cli/formatter"
	"github.com/alexanderramin/spotsurfer/internal/push"
)

func newNotifyCmd(app *App) *cobra.Command {
	var n push.Notification
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a push notification to every subscriber",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Push == nil {
				return errors.New("push notifications are not configured (set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY)")
			}
			if n.Title == "" && n.Body == "" {
				return errors.New("--title or --body is required")
			}
			res, err := app.Push.Broadcast(cmd.Context(), n)
			if err != nil {
				return fmt.Errorf("broadcast failed: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBroadcast(res.Sent, res.Failed, res.Removed))
			return nil
		},
	}
	cmd.Flags().StringVarP(&n.Title, "title", "t", "", "notification title")
	cmd.Flags().StringVarP(&n.Body, "body", "b", "", "notification body")
	return cmd
}

func newVAPIDKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keys",
		Short: "Generate a VAPID key pair for push notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, pub, err := push.GenerateVAPIDKeys()
			if err != nil {
				return fmt.Errorf("generating keys: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatVAPIDKeys(pub, priv))
			return nil
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errors.New("server is not configured")
			}
			return app.Serve(cmd.Context())
		},
	}
}
