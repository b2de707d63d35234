// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package clouds

import (
	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/skyfed/internal/cli/cmd"
)

func CloudsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "clouds",
		Short: "Show the clouds and peers of the local provider",
		RunE: func(command *cobra.Command, args []string) error {
			opts, err := cmd.OutputFromFlags(command)
			if err != nil {
				return err
			}
			app, err := cmd.AppFromContext(command)
			if err != nil {
				return err
			}
			clouds, err := app.Clouds(command.Context())
			return cmd.Output(command, opts, clouds, err)
		},
		Annotations: map[string]string{
			"type":     "Clouds",
			"examples": "{{.Name}} {{.Command}} --output-consumer machine --query clouds",
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	cmd.AddOutputFlags(command)
	return command
}
