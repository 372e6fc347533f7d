package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/spotsurfer/internal/cli/formatter"
)

var errAssistantDisabled = errors.New("assistant is not configured")

func newAskCmd(app *App) *cobra.Command {
	var (
		flags  tripFlags
		asJSON bool
		asHTML bool
	)
	cmd := &cobra.Command{
		Use:   `ask "<question>"`,
		Short: "Ask Spot a question",
		Long:  "Resolve locations, gather live weather and traffic, and ask the language model.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Assistant == nil {
				return errAssistantDisabled
			}
			req := flags.request(cmd.Flags(), strings.Join(args, " "))
			out := cmd.OutOrStdout()

			stop := func() {}
			if app.interactive() && !asJSON {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Checking weather and traffic...")
			}
			resp, err := app.Assistant.Ask(cmd.Context(), req)
			stop()
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"response": resp.Response,
					"html":     resp.HTML,
					"fallback": resp.Fallback,
				})
			case asHTML:
				fmt.Fprint(out, resp.HTML)
			default:
				fmt.Fprint(out, formatter.FormatAnswer(resp.Response, resp.Fallback))
			}
			return nil
		},
	}
	flags.bind(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the response as JSON")
	cmd.Flags().BoolVar(&asHTML, "html", false, "print the rendered HTML")
	cmd.MarkFlagsMutuallyExclusive("json", "html")
	return cmd
}

func newPromptCmd(app *App) *cobra.Command {
	var (
		flags tripFlags
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   `prompt "<question>"`,
		Short: "Show the prompt that would be sent for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Assistant == nil {
				return errAssistantDisabled
			}
			req := flags.request(cmd.Flags(), strings.Join(args, " "))
			p, err := app.Assistant.Preview(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("rendering prompt: %w", err)
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPrompt(p))
			return nil
		},
	}
	flags.bind(cmd.Flags())
	cmd.Flags().BoolVar(&raw, "raw", false, "print the prompt without decoration")
	return cmd
}
