// Command komd hosts the conferencing runtime: it loads a module list,
// starts each module through the registry and stops them on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"komd/internal/auth"
	"komd/internal/config"
	"komd/internal/event"
	"komd/internal/httpapi"
	"komd/internal/logging"
	"komd/internal/registry"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const envConfig = "KOMD_CONFIG"

func main() {
	os.Exit(MainWithArgs(os.Args[1:]))
}

// MainWithArgs runs the CLI and returns the process exit code:
// 0 on success, 1 on command failure, 2 when no command was given.
func MainWithArgs(args []string) int {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd(stdout, stderr)
	if len(args) == 0 {
		_ = root.Usage()
		return 2
	}
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "komd: %v\n", err)
		return 1
	}
	return 0
}

// cliFlags holds the persistent flags; empty values leave the config file
// settings in place.
type cliFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func buildRootCmd(stdout, stderr io.Writer) *cobra.Command {
	fl := &cliFlags{}
	root := &cobra.Command{
		Use:           "komd",
		Short:         "Module host for the conferencing runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&fl.configPath, "config", os.Getenv(envConfig), "Config file (.yaml|.yml|.json|.toml); defaults to $"+envConfig)
	root.PersistentFlags().StringVar(&fl.logLevel, "log-level", "", "Log level: trace|debug|info|warn|error|off (overrides config)")
	root.PersistentFlags().StringVar(&fl.logFormat, "log-format", "", "Log format: json|console (overrides config)")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start every configured module and run until interrupted",
		Example: "  komd serve --config /etc/komd/komd.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(fl)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and list its modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(fl)
			if err != nil {
				return err
			}
			if problems := cfg.Problems(); len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return fmt.Errorf("%d module definition(s) would be skipped", len(problems))
			}
			f := catalog(nil)
			for _, def := range cfg.Modules {
				if _, ok := f[def.Implementation]; !ok {
					return registry.ErrUnknownImplementation(def.Implementation)
				}
			}
			for _, def := range cfg.Modules {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", def.Name, def.Implementation)
			}
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the komd version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	root.AddCommand(serveCmd, checkCmd, versionCmd)
	return root
}

func loadConfig(fl *cliFlags) (config.Config, error) {
	if fl.configPath == "" {
		return config.Config{}, fmt.Errorf("no config file: pass --config or set %s", envConfig)
	}
	cfg, err := config.Load(fl.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if fl.logLevel != "" {
		cfg.LogLevel = fl.logLevel
	}
	if fl.logFormat != "" {
		cfg.LogFormat = fl.logFormat
	}
	return cfg, nil
}

// catalog returns every built-in module implementation.
func catalog(disp *event.Dispatcher) registry.Factories {
	f := registry.Factories{}
	auth.Install(f)
	httpapi.Install(f, disp)
	return f
}

// serve starts the configured modules, blocks until ctx is done and then
// stops them. A module that fails to start is logged and skipped.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	timeout, err := cfg.Shutdown.JoinTimeoutDuration()
	if err != nil {
		return err
	}
	order := registry.ParseStopOrder(cfg.Shutdown.Order)

	for _, p := range cfg.Problems() {
		log.Warn().Str("problem", p).Msg("module definition will be skipped")
	}

	disp := event.NewDispatcher(log)
	disp.Register(event.NewLogTarget(log))

	reg := registry.New(log, catalog(disp))
	errs := reg.StartAll(cfg.Modules)
	log.Info().Int("modules", reg.Len()).Int("failed", len(errs)).Msg("komd started")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := reg.StopAll(registry.StopOptions{Order: order, JoinTimeout: timeout}); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
		return err
	}
	log.Info().Msg("komd stopped")
	return nil
}
