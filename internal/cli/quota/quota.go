// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package quota

import (
	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/skyfed/internal/cli/cmd"
)

func QuotaCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "quota",
		Short: "Show the quota of the user in a cloud",
		RunE: func(command *cobra.Command, args []string) error {
			opts, err := cmd.OutputFromFlags(command)
			if err != nil {
				return err
			}
			app, err := cmd.AppFromContext(command)
			if err != nil {
				return err
			}
			provider, cloud := cmd.TargetFromFlags(command)
			quota, err := app.Quota(command.Context(), provider, cloud)
			return cmd.Output(command, opts, quota, err)
		},
		Annotations: map[string]string{
			"type":     "Clouds",
			"examples": "{{.Name}} {{.Command}} --user-id bob --identity-provider idp --cloud east",
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	cmd.AddTargetFlags(command)
	cmd.AddOutputFlags(command)
	return command
}
