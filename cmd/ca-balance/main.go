package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grez-lucas/ca-balance/internal/config"
	"github.com/grez-lucas/ca-balance/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds what the persistent pre-run hook loads for the subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	tel     telemetry.Telemetry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	opts := &balanceOptions{}

	cmd := &cobra.Command{
		Use:   "ca-balance",
		Short: "Print the balances of a Crédit Agricole account",
		Long: `ca-balance logs in to the Crédit Agricole web portal the way a browser
does, clicking the randomized virtual keypad, and prints every account listed
on the summary page.

Missing credentials are read from CA_BALANCE_ACCOUNT and CA_BALANCE_PASSWORD,
then prompted for.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
		RunE: a.traced(func(cmd *cobra.Command, _ []string) error {
			return a.runBalance(cmd, opts)
		}),
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/ca-balance/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	cmd.PersistentFlags().String("endpoint", "", "login endpoint of the regional bank")
	cmd.PersistentFlags().String("origin-url", "", "public site of the regional bank")
	cmd.PersistentFlags().Duration("timeout", 0, "timeout of each HTTP exchange")

	// Bind flags to viper
	_ = a.v.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = a.v.BindPFlag("bank.endpoint", cmd.PersistentFlags().Lookup("endpoint"))
	_ = a.v.BindPFlag("bank.origin_url", cmd.PersistentFlags().Lookup("origin-url"))
	_ = a.v.BindPFlag("http.timeout", cmd.PersistentFlags().Lookup("timeout"))

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "account number")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "personal code (prompted when empty)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&opts.recordPath, "record", "", "save a sanitized HAR recording of the session to this file")

	cmd.AddCommand(a.newProbeCmd())

	return cmd
}

func main() {
	// Set up signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := setupLogging(cmd.ErrOrStderr(), cfg.Logging); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	tel, err := telemetry.Setup(cmd.Context(), "ca-balance", telemetry.Config{OTLPEndpoint: cfg.Telemetry.OTLPEndpoint})
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	a.tel = tel

	return nil
}

// traced flushes the spans of the command whatever its outcome.
func (a *app) traced(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.tel.Shutdown(ctx); err != nil {
				slog.Warn("failed to flush traces", "error", err)
			}
		}()
		return run(cmd, args)
	}
}

func setupLogging(w io.Writer, logging config.LoggingConfig) error {
	var level slog.Level
	switch logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", logging.Level)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch logging.Format {
	case "console":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format: %s", logging.Format)
	}

	slog.SetDefault(slog.New(handler))

	return nil
}
