// Package cli is the librarian command line. Every command runs the same
// application services as the HTTP API and prints the API's JSON shapes.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/config"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
	"github.com/jsamuelsen/library-circulation/internal/ports"
	"github.com/jsamuelsen/library-circulation/internal/wiring"
)

const (
	defaultProfile = "local"
	asOfDateLayout = "2006-01-02"
)

// ConfigLoader loads the configuration for a profile.
type ConfigLoader func(profile string) (*config.Config, error)

// Option customizes the root command.
type Option func(*Root)

// WithConfigLoader replaces config.Load.
func WithConfigLoader(load ConfigLoader) Option {
	return func(r *Root) { r.loadConfig = load }
}

// WithStore makes every command use store instead of the configured one.
func WithStore(store ports.LibraryStore) Option {
	return func(r *Root) { r.store = store }
}

// Root holds the global flags shared by every subcommand.
type Root struct {
	loadConfig ConfigLoader
	store      ports.LibraryStore

	profile string
	asOf    string
}

// CommandError is a failed command, carrying the domain error kind.
type CommandError struct {
	Kind    domain.ErrorKind
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewRootCommand builds the librarian command tree.
func NewRootCommand(version string, opts ...Option) *cobra.Command {
	r := &Root{loadConfig: config.Load}
	for _, opt := range opts {
		opt(r)
	}

	cmd := &cobra.Command{
		Use:           "librarian",
		Short:         "Run library circulation operations from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&r.profile, "profile", defaultProfile, "configuration profile (configs/<profile>.yaml)")
	cmd.PersistentFlags().StringVar(&r.asOf, "as-of", "", "evaluate dates as of this day (YYYY-MM-DD) or RFC 3339 instant")

	cmd.AddCommand(
		r.addBookCommand(),
		r.listBooksCommand(),
		r.searchCommand(),
		r.borrowCommand(),
		r.returnCommand(),
		r.lateFeeCommand(),
		r.reportCommand(),
		r.payCommand(),
		r.refundCommand(),
		r.importCommand(),
	)

	return cmd
}

// runFunc is the body of a subcommand, given wired components.
type runFunc func(ctx context.Context, c *wiring.Components, out io.Writer) error

// run wraps fn so each invocation builds its components and releases them.
func (r *Root) run(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := r.loadConfig(r.profile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		clock, err := parseAsOf(r.asOf)
		if err != nil {
			return err
		}

		logger := logging.NewWithWriter(wiring.LoggingConfig(cfg), cmd.ErrOrStderr())

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ctx = logging.WithContext(ctx, logger)

		components, err := wiring.Build(ctx, cfg, logger, wiring.Options{Clock: clock, Store: r.store})
		if err != nil {
			return err
		}

		defer func() {
			if closeErr := components.Close(); closeErr != nil {
				logger.Error("closing library store", slog.Any("error", closeErr))
			}
		}()

		if err := fn(ctx, components, cmd.OutOrStdout()); err != nil {
			return commandError(err)
		}

		return nil
	}
}

func commandError(err error) error {
	return &CommandError{Kind: domain.KindOf(err), Message: domain.Describe(err), Err: err}
}

// parseAsOf turns the --as-of flag into a fixed clock. Empty means now.
func parseAsOf(raw string) (app.Clock, error) {
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{asOfDateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return func() time.Time { return t }, nil
		}
	}

	return nil, fmt.Errorf("--as-of %q: want YYYY-MM-DD or RFC 3339", raw)
}

func printJSON(out io.Writer, v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
