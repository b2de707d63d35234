// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package agent

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/skyfed/internal/agent"
	"github.com/platform-engineering-labs/skyfed/internal/cli/cmd"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
	"github.com/platform-engineering-labs/skyfed/internal/config"
)

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the agent",
		RunE: func(command *cobra.Command, args []string) error {
			configPath, _ := command.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("%w%s", err, display.ConfigHint(config.ConfigFile(configPath)))
			}

			agentID, err := config.AgentID(config.DataDir())
			if err != nil {
				return fmt.Errorf("error retrieving agent ID: %w", err)
			}

			slog.Info("Starting skyfed agent", "provider", cfg.Provider.ID, "agentId", agentID)
			return agent.New(cfg, agentID).Run(command.Context())
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			display.PrintBanner()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the agent",
		RunE: func(command *cobra.Command, args []string) error {
			if err := agent.New(nil, "").Stop(); err != nil {
				return err
			}
			display.Success("Agent stopped")
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
}

func statusCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "status",
		Short: "Report whether the agent is serving",
		RunE: func(command *cobra.Command, args []string) error {
			opts, err := cmd.OutputFromFlags(command)
			if err != nil {
				return err
			}
			app, err := cmd.AppFromContext(command)
			if err != nil {
				return err
			}
			health, err := app.Health(command.Context())
			return cmd.Output(command, opts, health, err)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.AddOutputFlags(command)
	return command
}

func AgentCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "agent",
		Short: "Agent management commands",
		Annotations: map[string]string{
			"type":     "Agent",
			"examples": "{{.Name}} {{.Command}} start  |  {{.Name}} {{.Command}} status",
		},
		SilenceErrors: true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)
	command.AddCommand(startCmd(), stopCmd(), statusCmd())
	return command
}
