// Package commands implements the CLI for the remake build engine.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/remake-build/remake/internal/app"
	"github.com/remake-build/remake/internal/build"
	"github.com/remake-build/remake/internal/core/ports"
)

// CLI represents the command line interface for remake.
type CLI struct {
	app      Application
	defaults ports.ConfigLoader
	log      ports.Logger
	rootCmd  *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, targets []string, opts app.RunOptions) error
}

// New creates a new CLI instance with the given app. Flag defaults come
// from the optional .remake.yaml in the working directory; explicit
// flags always win.
func New(a Application, defaults ports.ConfigLoader, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "remake [options] [target ...]",
		Short:         "A build engine joining declarative rules with dynamic dependencies",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.Flags()
	flags.SetNormalizeFunc(normalizeFlagName)
	flags.CountP("debug", "d", "Echo script commands; repeat for debug logging")
	flags.StringP("file", "f", "", `Read FILE as the rule file (default "Remakefile")`)
	flags.IntP("jobs", "j", 1, "Allow N simultaneous jobs; no value means unbounded")
	flags.Lookup("jobs").NoOptDefVal = "0"
	flags.BoolP("keep-going", "k", false, "Keep building unrelated targets after an error")
	flags.BoolP("stdin", "r", false, "Read dependency syntax from stdin and build the recorded prerequisites")
	flags.BoolP("silent", "s", false, "Do not print per-target announcements")

	c := &CLI{
		app:      a,
		defaults: defaults,
		log:      log,
		rootCmd:  rootCmd,
	}
	rootCmd.RunE = c.runRoot

	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// runRoot resolves the effective options from the defaults file and the
// given flags, then hands the build over to the application.
func (c *CLI) runRoot(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	cfg, err := c.defaults.Load(".")
	if err != nil {
		return err
	}

	opts := app.RunOptions{
		Jobs:        cfg.Jobs,
		KeepGoing:   cfg.KeepGoing,
		Silent:      cfg.Silent,
		EchoScripts: cfg.Echo,
		RuleFile:    cfg.RuleFile,
	}
	if flags.Changed("jobs") {
		opts.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("keep-going") {
		opts.KeepGoing, _ = flags.GetBool("keep-going")
	}
	if flags.Changed("silent") {
		opts.Silent, _ = flags.GetBool("silent")
	}
	if file, _ := flags.GetString("file"); file != "" {
		opts.RuleFile = file
	}
	opts.StdinDeps, _ = flags.GetBool("stdin")

	if debug, _ := flags.GetCount("debug"); debug > 0 {
		opts.EchoScripts = true
		if debug > 1 {
			c.log.SetDebug(true)
		}
	}

	return c.app.Run(cmd.Context(), args, opts)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command, accepting the
// attached -jN short form. Used by main and for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(normalizeArgs(args))
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// normalizeFlagName maps the --quiet alias onto --silent.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "quiet" {
		name = "silent"
	}
	return pflag.NormalizedName(name)
}

// normalizeArgs rewrites the GNU-style attached form -jN into --jobs=N,
// which pflag cannot parse once the flag carries an optional value.
// Rewriting stops at the -- terminator.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if len(arg) > 2 && strings.HasPrefix(arg, "-j") && arg[2] != '=' {
			arg = "--jobs=" + arg[2:]
		}
		out = append(out, arg)
	}
	return out
}
