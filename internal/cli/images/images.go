// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package images lists and inspects the images of local and federated clouds.
package images

import (
	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/skyfed/internal/cli/cmd"
)

func listCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "List the images of a cloud",
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
			images, err := app.Images(command.Context(), provider, cloud)
			return cmd.Output(command, opts, images, err)
		},
		Annotations: map[string]string{
			"examples": "{{.Name}} images {{.Command}} --provider provider-b --cloud east",
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	cmd.AddTargetFlags(command)
	cmd.AddOutputFlags(command)
	return command
}

func getCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "get IMAGE_ID",
		Short: "Show one image",
		Args: func(command *cobra.Command, args []string) error {
			if len(args) != 1 {
				return cmd.FlagErrorf("expected exactly one image id, got %d", len(args))
			}
			return nil
		},
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
			image, err := app.Image(command.Context(), provider, cloud, args[0])
			return cmd.Output(command, opts, image, err)
		},
		Annotations: map[string]string{
			"args": "IMAGE_ID",
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	cmd.AddTargetFlags(command)
	cmd.AddOutputFlags(command)
	return command
}

func ImagesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "images",
		Short: "Browse cloud images",
		Annotations: map[string]string{
			"type":     "Clouds",
			"examples": "{{.Name}} {{.Command}} list  |  {{.Name}} {{.Command}} get img-debian-12",
		},
		SilenceErrors: true,
	}
	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	command.AddCommand(listCmd(), getCmd())
	return command
}
