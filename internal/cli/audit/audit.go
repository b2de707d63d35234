// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package audit

import (
	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/skyfed/internal/cli/cmd"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
)

func listCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "List the most recent audit records, newest first",
		RunE: func(command *cobra.Command, args []string) error {
			opts, err := cmd.OutputFromFlags(command)
			if err != nil {
				return err
			}
			limit, _ := command.Flags().GetInt("max-results")
			if limit < 0 {
				return cmd.FlagErrorf("--max-results must not be negative")
			}
			app, err := cmd.AppFromContext(command)
			if err != nil {
				return err
			}
			records, err := app.Audit(command.Context(), limit)
			return cmd.Output(command, opts, records, err)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	command.Flags().Int("max-results", 20, "Maximum number of records to return")
	cmd.AddOutputFlags(command)
	return command
}

func switchCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(command *cobra.Command, args []string) error {
			app, err := cmd.AppFromContext(command)
			if err != nil {
				return err
			}
			settings, err := app.SetAudit(command.Context(), enabled)
			if err != nil {
				return cmd.Fail(err)
			}
			if settings.Enabled {
				display.Success("Auditing enabled")
			} else {
				display.Success("Auditing disabled")
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
}

func AuditCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and switch auditing of the local clouds",
		Annotations: map[string]string{
			"type":     "Agent",
			"examples": "{{.Name}} {{.Command}} list --max-results 5  |  {{.Name}} {{.Command}} disable",
		},
		SilenceErrors: true,
	}
	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	command.AddCommand(
		listCmd(),
		switchCmd("enable", "Record every local connector operation", true),
		switchCmd("disable", "Stop recording local connector operations", false),
	)
	return command
}
