// Package cli provides the cobra command tree, grounded on the teacher's
// minimal NewRootCommand plus a config flag, extended with two
// subcommands: serve starts the fx app (cmd/workflow-runtime wires the
// actual serve behavior in), and validate checks a definition file against
// the builtin schema without starting anything. There is no subcommand for
// starting an instance; runs are started through the REST API.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// NewRootCommand builds the command tree. serveFunc is injected by
// cmd/workflow-runtime/main.go so this package never imports the fx app
// wiring directly.
func NewRootCommand(serveFunc func(configPath string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow-runtime",
		Short: "Graph-structured workflow execution runtime",
	}
	cmd.PersistentFlags().String("config", "config.yaml", "Path to config file")

	cmd.AddCommand(newServeCommand(serveFunc))
	cmd.AddCommand(newValidateCommand())
	return cmd
}

func newServeCommand(serveFunc func(configPath string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/gRPC service",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return serveFunc(configPath)
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [definition.json]",
		Short: "Validate a workflow definition file against the schema and materialize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			validator, err := workflow.NewSchemaValidator()
			if err != nil {
				return err
			}
			if err := validator.ValidateDefinitionJSON(data); err != nil {
				return err
			}
			var def workflow.WorkflowDefinition
			if err := json.Unmarshal(data, &def); err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}
			if _, err := workflow.Materialize(&def); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%d is valid\n", def.ID, def.Version)
			return nil
		},
	}
}
