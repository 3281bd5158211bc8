// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to run your sessions and read your
training history through a standardized protocol. The server communicates
via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "workout": {
        "command": "workout",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

AVAILABLE TOOLS:

  list_templates       List workout templates
  get_template         Template with slots, options and prescriptions
  start_session        Start a draft from a template
  get_active_session   The draft in progress
  select_exercise      Switch a slot to another exercise option
  log_set              Record or update a set
  complete_set         Mark a set completed
  add_warmups          Generate warm-up sets
  finish_session       Finalize the draft and detect PRs
  discard_session      Throw the draft away
  list_history         Finalized sessions
  get_session          Session with all sets
  get_stats            Overall, template and muscle stats
  get_streak           Consecutive training days
  get_session_prs      Personal records of a session
  get_e1rm_history     Estimated 1RM trend of an exercise
  log_body_weight      Record body weight

AVAILABLE RESOURCES:

  workout://draft            Active draft session
  workout://history/recent   Last 10 sessions
  workout://stats/summary    Training dashboard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, unit)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
