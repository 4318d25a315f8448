package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dukerupert/grocerylist/internal/backup"
	"github.com/dukerupert/grocerylist/internal/config"
	"github.com/dukerupert/grocerylist/internal/database"
	"github.com/dukerupert/grocerylist/internal/feed"
	"github.com/dukerupert/grocerylist/internal/logging"
	"github.com/dukerupert/grocerylist/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath     string
	ConfigPath string
	LogLevel   string
	Format     string // "json" | "text"

	// Getenv looks up environment variables; os.Getenv unless a test swaps it.
	Getenv func(string) string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the grocerylist CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Getenv: os.Getenv})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grocerylist",
		Short:         "A local grocery list",
		Long:          "Keep a grocery list in a single SQLite file, from the terminal or over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				text := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr()}
				_ = text.Error(ErrCodeInvalid, msg)
				return NewExitError(ExitCommandError, msg)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewToggleCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewClearBoughtCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (o *RootOptions) getenv(key string) string {
	if o.Getenv == nil {
		return os.Getenv(key)
	}
	return o.Getenv(key)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

// loadConfig layers the global flags over the file and environment settings.
func (o *RootOptions) loadConfig() (config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.PathFromEnv(o.getenv)
	}
	cfg, err := config.Load(path, o.getenv)
	if err != nil {
		return config.Config{}, err
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	return cfg, nil
}

// session is what a command needs to talk to the store.
type session struct {
	cfg    config.Config
	db     *sql.DB
	store  *store.GroceryStore
	logger *slog.Logger
	out    *OutputFormatter
}

func (o *RootOptions) openSession(cmd *cobra.Command) (*session, error) {
	out := o.formatter(cmd)

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fail(out, err)
	}

	logger := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cmd.Context(), cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		return nil, fail(out, err)
	}

	return &session{
		cfg:    cfg,
		db:     db,
		store:  store.NewGroceryStore(db),
		logger: logger,
		out:    out,
	}, nil
}

func (s *session) Close() error {
	return s.db.Close()
}

var errInvalidID = errors.New("invalid item id")

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, arg)
	}
	return id, nil
}

// fail reports err through the formatter and converts it to an ExitError.
func fail(out *OutputFormatter, err error) error {
	code, exit := classify(err)
	_ = out.Error(code, err.Error())
	return WrapExitError(exit, code, err)
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, errInvalidID), errors.Is(err, store.ErrEmptyName), errors.Is(err, backup.ErrBadPassphrase):
		return ErrCodeInvalid, ExitCommandError
	case errors.Is(err, store.ErrDuplicateName):
		return ErrCodeDuplicate, ExitCommandError
	case errors.Is(err, database.ErrStoreUnavailable):
		return ErrCodeUnavailable, ExitFailure
	case errors.Is(err, feed.ErrNetwork):
		return ErrCodeNetwork, ExitFailure
	case errors.Is(err, store.ErrImportFailed):
		return ErrCodeImport, ExitFailure
	default:
		return ErrCodeGeneric, ExitFailure
	}
}
