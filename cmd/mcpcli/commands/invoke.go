package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/session"
)

// invokeArgs holds the value of the --args flag.
var invokeArgs string

// validateArgs holds the value of the --validate flag.
var validateArgs bool

func init() {
	callToolCmd.Flags().StringVar(&invokeArgs, "args", "", "tool arguments as a JSON object")
	callToolCmd.Flags().BoolVar(&validateArgs, "validate", false,
		"check arguments against the tool's input schema before calling it")
	getPromptCmd.Flags().StringVar(&invokeArgs, "args", "", "prompt arguments as a JSON object")

	rootCmd.AddCommand(listToolsCmd)
	rootCmd.AddCommand(callToolCmd)
	rootCmd.AddCommand(readResourceCmd)
	rootCmd.AddCommand(getPromptCmd)
}

var listToolsCmd = &cobra.Command{
	Use:   "list-tools <server>",
	Short: "Print the tools of a configured server as JSON",
	Example: `  mcpcli list-tools filesystem

  See Also: mcpcli call-tool`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoke(session.ListTools),
}

var callToolCmd = &cobra.Command{
	Use:   "call-tool <server:tool>",
	Short: "Call a tool and print its result as JSON",
	Long: `Call a tool on a configured server without prompting and print its
result as JSON. Structured tool output is printed when the tool returns
it; otherwise the whole result is printed.

On failure a single {"error": "..."} document is printed instead.`,
	Example: `  mcpcli call-tool filesystem:list_directory --args '{"path":"/tmp"}'

  # Check arguments against the input schema first
  mcpcli call-tool everything:add --args '{"a":1,"b":2}' --validate

  See Also: mcpcli list-tools`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoke(session.CallTool),
}

var readResourceCmd = &cobra.Command{
	Use:     "read-resource <server:uri>",
	Short:   "Read a resource and print its contents as JSON",
	Example: `  mcpcli read-resource everything:test://static/resource/1`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoke(session.ReadResource),
}

var getPromptCmd = &cobra.Command{
	Use:     "get-prompt <server:prompt>",
	Short:   "Get a prompt and print its messages as JSON",
	Example: `  mcpcli get-prompt everything:complex_prompt --args '{"temperature":"0.7"}'`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoke(session.GetPrompt),
}

func runInvoke(command session.Command) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		a := newApp(c)
		defer a.Close()

		rawArgs := ""
		if f := c.Flags().Lookup("args"); f != nil {
			rawArgs = f.Value.String()
		}

		once := &session.Once{
			Dial:       a.dial,
			Out:        a.pres,
			Logger:     a.log,
			Validate:   command == session.CallTool && validateArgs,
			RPCTimeout: a.cfg.Session.RPCTimeout,
		}
		if err := once.Invoke(c.Context(), command, args[0], rawArgs); err != nil {
			return errors.Mark(err, errReported)
		}
		return nil
	}
}
