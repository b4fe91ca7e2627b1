package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/execution-hub/supervisor/internal/application/orchestrator"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show which worker a request would be routed to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd, c.Config().AssistTimeout+5*time.Second)
		defer cancel()

		d, err := c.Orchestrator().IdentifyIntent(ctx, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), d)
	},
}

var (
	submitState  string
	submitParams []string
	submitUser   string
)

var submitCmd = &cobra.Command{
	Use:   "submit <text>",
	Short: "Route and dispatch a request; pass --state to answer a clarification",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" && submitState == "" {
			return fmt.Errorf("request text is required")
		}
		params, err := parseParams(submitParams)
		if err != nil {
			return err
		}
		c, err := newContainer()
		if err != nil {
			return err
		}
		cfg := c.Config()
		ctx, cancel := withTimeout(cmd, cfg.WorkerTimeout+cfg.AssistTimeout)
		defer cancel()

		caller := map[string]string{}
		if submitUser != "" {
			caller[orchestrator.CallerUserID] = submitUser
		}
		out, err := c.Orchestrator().Submit(ctx, orchestrator.Submission{
			Text:              text,
			CallerContext:     caller,
			ConversationState: submitState,
			Parameters:        params,
		})
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		if out.Err != nil {
			return out.Err
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitState, "state", "", "conversation state token from a previous clarification")
	submitCmd.Flags().StringArrayVarP(&submitParams, "param", "p", nil, "explicit parameter as key=value (repeatable)")
	submitCmd.Flags().StringVar(&submitUser, "user", "", "caller user id")
}

func parseParams(pairs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", p)
		}
		params[k] = strings.TrimSpace(v)
	}
	return params, nil
}

func withTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
