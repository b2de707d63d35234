// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/platform-engineering-labs/skyfed"
	"github.com/platform-engineering-labs/skyfed/internal/cli/agent"
	"github.com/platform-engineering-labs/skyfed/internal/cli/audit"
	"github.com/platform-engineering-labs/skyfed/internal/cli/clouds"
	"github.com/platform-engineering-labs/skyfed/internal/cli/cmd"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
	"github.com/platform-engineering-labs/skyfed/internal/cli/images"
	"github.com/platform-engineering-labs/skyfed/internal/cli/quota"
	"github.com/platform-engineering-labs/skyfed/internal/config"
	"github.com/platform-engineering-labs/skyfed/internal/logging"
)

func longDescription() string {
	return display.Tool + ": " + display.Green("A broker for federated cloud resources")
}

func init() {
	cobra.AddTemplateFunc("typeMap", func(cmds []*cobra.Command) map[string][]*cobra.Command {
		m := make(map[string][]*cobra.Command)
		for _, c := range cmds {
			if c.IsAvailableCommand() {
				t := c.Annotations["type"]
				if t == "" {
					t = "Tooling"
				}

				m[t] = append(m[t], c)
			}
		}
		return m
	})

	cobra.AddTemplateFunc("formatExamples", func(examples string, cmd *cobra.Command) string {
		cliName := cmd.Root().Name()
		cmdName := cmd.Name()
		replaced := strings.ReplaceAll(examples, "{{.Name}}", cliName)
		return strings.ReplaceAll(replaced, "{{.Command}}", cmdName)
	})

	cobra.AddTemplateFunc("optionsUsage", func(f *pflag.FlagSet) []string {
		longestFlagName := 0
		f.VisitAll(func(flag *pflag.Flag) {
			length := len(flag.Name)
			if flag.Shorthand != "" {
				length += 6
			}
			longestFlagName = max(longestFlagName, length)
		})
		longestFlagName += 10

		var usage []string
		f.VisitAll(func(flag *pflag.Flag) {
			s := fmt.Sprintf("      --%s ", flag.Name)
			if flag.Shorthand != "" {
				s = fmt.Sprintf("  -%s, --%s ", flag.Shorthand, flag.Name)
			}

			s = fmt.Sprintf("%-*s%s", longestFlagName, s, flag.Usage)
			if flag.DefValue != "" &&
				flag.DefValue != "0" &&
				flag.DefValue != "false" &&
				flag.Name != "help" &&
				flag.Name != "version" {
				s += display.Grey(fmt.Sprintf(" [default: %q]", flag.DefValue))
			}

			usage = append(usage, s)
		})
		return usage
	})
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     display.Tool,
		Short:   display.Tool + " CLI",
		Long:    longDescription(),
		Version: skyfed.Version,
		PersistentPreRun: func(command *cobra.Command, args []string) {
			if noColor, _ := command.Flags().GetBool("no-color"); noColor {
				display.DisableColors()
			}
			logging.SetupCliLogging(filepath.Join(config.DataDir(), "log", "client.log"))
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	hp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		display.PrintBanner()
		hp(cmd, args)
	})
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetUsageTemplate(cmd.RootCmdUsageTemplate)

	rootCmd.AddCommand(
		agent.AgentCmd(),
		audit.AuditCmd(),
		clouds.CloudsCmd(),
		images.ImagesCmd(),
		quota.QuotaCmd(),
	)

	cmd.AddGlobalFlags(rootCmd)
	rootCmd.PersistentFlags().Bool("no-color", false, "Print without colors")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for "+rootCmd.Use)
	for _, c := range rootCmd.Commands() {
		c.PersistentFlags().BoolP("help", "h", false, fmt.Sprintf("Show help for %s command", c.Name()))
	}

	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show "+rootCmd.Use+" version information")
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s version: %s\ngo version: %s\n", display.Tool, skyfed.Version, runtime.Version()))

	return rootCmd
}

// Execute runs args and reports a failure on errOut. It returns the process
// exit code.
func Execute(rootCmd *cobra.Command, args []string, errOut io.Writer) int {
	rootCmd.SetArgs(args)
	failed, err := cmd.InitCommandWithContext(rootCmd).ExecuteC()
	if err == nil {
		return 0
	}

	var rendered *cmd.RenderedError
	var flagErr *cmd.FlagError
	switch {
	case errors.As(err, &rendered):
		_, _ = fmt.Fprint(errOut, rendered.Message)
	case errors.As(err, &flagErr):
		_, _ = fmt.Fprintln(errOut, display.Red("Error: "+err.Error()))
		_ = failed.Usage()
	default:
		_, _ = fmt.Fprintln(errOut, display.Red("Error: "+err.Error()))
	}
	return 1
}

func Start() {
	os.Exit(Execute(NewRootCmd(), os.Args[1:], os.Stderr))
}
