package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/xhad/guidegen/pkg/config"
	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("github.com/xhad/guidegen")
}

type command struct {
	name    string
	args    string
	summary string
	// needsLLM commands fail at startup when the provider settings are
	// invalid. The others only need the output and accessibility settings.
	needsLLM bool
	run      func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{name: "guide", args: "TOPIC", summary: "Generate a learning guide for TOPIC", needsLLM: true, run: runGuide},
	{name: "voiceover-basics", summary: "Generate the VoiceOver basics guide for beginners", needsLLM: true, run: fixedTopic("voiceover-basics", voiceOverTopic)},
	{name: "jaws-setup", summary: "Generate the JAWS setup guide for Windows", needsLLM: true, run: fixedTopic("jaws-setup", jawsTopic)},
	{name: "list", summary: "List recently saved guides", run: runList},
	{name: "preview", args: "FILE", summary: "Show a saved markdown guide in the terminal", run: runPreview},
	{name: "accessibility-test", summary: "Check the accessibility settings and save a test guide", run: runAccessibilityTest},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var (
		configPath  string
		logLevel    string
		showVersion bool
	)

	flags := pflag.NewFlagSet("guidegen", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&configPath, "config", "c", "", "Path to config file")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	flags.BoolVarP(&showVersion, "version", "V", false, "Print version and exit")
	flags.SetInterspersed(false)
	flags.Usage = func() { usage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return 2
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		flags.Usage()
		return 2
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		newUI(stdout, stderr).fail(err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	a := newApp(cfg, stdout, stderr)
	if problems := startupProblems(cfg, cmd.needsLLM); len(problems) > 0 {
		a.ui.configProblems(problems)
		return 1
	}

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		a.ui.fail(err)
		return 1
	}
	return 0
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// startupProblems filters the validation errors down to the ones that
// matter for the command about to run.
func startupProblems(cfg *config.Config, needsLLM bool) []config.ValidationError {
	var problems []config.ValidationError
	for _, e := range cfg.Validate() {
		if !needsLLM && strings.HasPrefix(e.Field, "llm.") {
			continue
		}
		problems = append(problems, e)
	}
	return problems
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, version.Module(), version.Current())
	fmt.Fprintln(w, "Usage: guidegen [flags] COMMAND [command flags] [args]")
	fmt.Fprintln(w, "\nCommands:")
	for _, c := range commands {
		name := c.name
		if c.args != "" {
			name += " " + c.args
		}
		fmt.Fprintf(w, "  %-22s %s\n", name, c.summary)
	}
	fmt.Fprintln(w, "\nFlags:")
	flags.PrintDefaults()
}

// subcommandFlags returns a flag set for one command that reports errors
// instead of exiting.
func subcommandFlags(a *app, name, args string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(a.ui.err)
	flags.Usage = func() {
		fmt.Fprintf(a.ui.err, "Usage: guidegen %s [flags] %s\n\nFlags:\n", name, args)
		flags.PrintDefaults()
	}
	return flags
}
