// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/skyfed/internal/cli/app"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
	"github.com/platform-engineering-labs/skyfed/internal/cli/printer"
	"github.com/platform-engineering-labs/skyfed/internal/cli/renderer"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// EnvToken supplies --token when the flag is not given.
const EnvToken = "SKYFED_TOKEN"

var RootCmdUsageTemplate = display.Grey("Usage: ") + display.Green("{{.CommandPath}} [OPTIONS]{{if .HasAvailableSubCommands}} [COMMAND]{{end}}\n") +
	"{{if .HasAvailableSubCommands}}\n" + display.Gold("Commands:") + "{{$types := typeMap .Commands}}" +
	"{{$first := true}}{{range $type, $cmds := $types}}" +
	"{{if $first}}{{$first = false}}{{else}}\n{{end}}\n  " + display.Gold("{{$type}}:") +
	"{{range $cmd := $cmds}}\n    " + display.Green("{{rpad $cmd.Name $cmd.NamePadding}}") + "     {{$cmd.Short}}" +
	"{{if (index $cmd.Annotations \"examples\")}}\n                   " +
	display.Grey("  {{formatExamples (index $cmd.Annotations \"examples\") $cmd}}") + "{{end}}" +
	"{{end}}{{end}}\n{{end}}" +
	"{{if .HasAvailableLocalFlags}}\n" + display.Gold("Options:\n") +
	"{{range .LocalFlags | optionsUsage}}{{.}}\n{{end}}" +
	"{{end}}" +
	"\n"

var SimpleCmdUsageTemplate = display.Grey("Usage: ") + display.Green("{{.CommandPath}}{{if .HasAvailableFlags}} [OPTIONS]{{end}}{{if .HasAvailableSubCommands}} [COMMAND]{{end}}") +
	display.Green("{{if index .Annotations \"args\"}} {{index .Annotations \"args\"}}{{end}}") + "\n" +
	"{{if .HasAvailableSubCommands}}\n" + display.Gold("Commands:") +
	"{{range $cmd := .Commands}}\n  " + display.Green("{{rpad $cmd.Name $cmd.NamePadding}}") + "       {{$cmd.Short}}" +
	"{{if (index $cmd.Annotations \"examples\")}}\n                   " +
	display.Grey("  {{formatExamples (index $cmd.Annotations \"examples\") $cmd}}") + "{{end}}" +
	"{{end}}\n{{end}}" +
	"{{if .HasAvailableLocalFlags}}\n" + display.Gold("Options:\n") +
	"{{range .LocalFlags | optionsUsage}}{{.}}\n{{end}}" +
	"{{end}}" +
	"{{if .HasAvailableInheritedFlags}}\n" + display.Gold("Global options:\n") +
	"{{range .InheritedFlags | optionsUsage}}{{.}}\n{{end}}" +
	"{{end}}" +
	"\n"

type appKey struct{}

func InitCommandWithContext(cmd *cobra.Command) *cobra.Command {
	cmd.SetContext(context.WithValue(context.Background(), appKey{}, app.NewApp()))
	return cmd
}

// AddGlobalFlags registers the flags every command reads through
// AppFromContext.
func AddGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Configuration file (defaults to ~/.config/skyfed/skyfed.yaml)")
	f.String("api-url", "", "URL of the skyfed agent, overrides the configuration")
	f.Int("api-port", 0, "Port of the skyfed agent, overrides the configuration")
	f.String("user-id", "", "Federation user to act as")
	f.String("user-name", "", "Display name of the federation user")
	f.String("identity-provider", "", "Identity provider that vouches for the user")
	f.String("token", "", "Token handed to the identity mapper (or "+EnvToken+")")
}

// AppFromContext loads the configuration and the acting user from the flags
// of cmd.
func AppFromContext(cmd *cobra.Command) (*app.App, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app.App)
	if !ok {
		return nil, errors.New("command context carries no app")
	}

	configPath, _ := cmd.Flags().GetString("config")
	if err := a.LoadConfig(configPath); err != nil {
		return nil, err
	}

	url, _ := cmd.Flags().GetString("api-url")
	port, _ := cmd.Flags().GetInt("api-port")
	a.OverrideEndpoint(url, port)

	a.User = UserFromFlags(cmd)
	return a, nil
}

// UserFromFlags is nil without --user-id, an anonymous request.
func UserFromFlags(cmd *cobra.Command) *model.SystemUser {
	id, _ := cmd.Flags().GetString("user-id")
	if id == "" {
		return nil
	}
	name, _ := cmd.Flags().GetString("user-name")
	idp, _ := cmd.Flags().GetString("identity-provider")

	user := &model.SystemUser{ID: id, Name: name, IdentityProviderID: idp}
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv(EnvToken)
	}
	if token != "" {
		user.Attributes = map[string]string{"token": token}
	}
	return user
}

func AddTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "Provider serving the cloud (defaults to the local provider)")
	cmd.Flags().String("cloud", "", "Cloud to query (defaults to the provider's default cloud)")
}

func TargetFromFlags(cmd *cobra.Command) (provider, cloud string) {
	provider, _ = cmd.Flags().GetString("provider")
	cloud, _ = cmd.Flags().GetString("cloud")
	return strings.TrimSpace(provider), strings.TrimSpace(cloud)
}

func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-consumer", string(printer.ConsumerHuman), "Consumer of the command result (human | machine)")
	cmd.Flags().String("output-schema", "json", "The schema to use for the machine output (json | yaml)")
	cmd.Flags().String("query", "", "gjson path selecting part of the machine output")
}

func OutputFromFlags(cmd *cobra.Command) (printer.Options, error) {
	consumer, _ := cmd.Flags().GetString("output-consumer")
	schema, _ := cmd.Flags().GetString("output-schema")
	query, _ := cmd.Flags().GetString("query")

	opts := printer.Options{
		Consumer: printer.Consumer(consumer),
		Schema:   schema,
		Query:    strings.TrimSpace(query),
	}
	if err := opts.Validate(); err != nil {
		return opts, FlagErrorWrap(err)
	}
	return opts, nil
}

// Output prints a result, or the agent error that replaced it.
func Output[T any](cmd *cobra.Command, opts printer.Options, v *T, err error) error {
	if err != nil {
		return Fail(err)
	}
	return printer.Print(cmd.OutOrStdout(), opts, v)
}

// Fail formats an agent error for the terminal.
func Fail(err error) error {
	msg, renderErr := renderer.RenderErrorMessage(err)
	if renderErr != nil {
		return fmt.Errorf("error rendering error message: %v", renderErr)
	}
	return &RenderedError{Err: err, Message: msg}
}
