package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/andresmejia3/eigenfaces/internal/eigenface"
	"github.com/andresmejia3/eigenfaces/internal/logging"
	"github.com/andresmejia3/eigenfaces/internal/store"
	"github.com/andresmejia3/eigenfaces/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options holds the database parameters and settings shared by every command
type Options struct {
	DBRoot    string `validate:"required"`
	Subjects  int    `validate:"gte=1"`
	Images    int    `validate:"gte=1"`
	LogLevel  string `validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `validate:"oneof=console json"`
	Quiet     bool
}

var (
	opts Options

	// DB is the store connection, opened only by commands that need it
	DB *store.Store
	// dbURL is the connection string
	dbURL string

	logger   = zap.NewNop()
	validate = validator.New()
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "eigenfaces",
	SilenceErrors: true,
	Short:         "PCA face space: mean face, eigenfaces, projection and reconstruction",
	Version:       Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(); err != nil {
			return err
		}
		applyEnv(cmd, &opts)

		if err := validateOptions(&opts, false); err != nil {
			return err
		}

		var err error
		logger, err = logging.New(opts.LogLevel, opts.LogFormat)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
		}
		logger.Sync()
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.Die("Command failed", err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.DBRoot, "db-root", "r", "", "Face database directory laid out as <root>/s<subject>/<image>.pgm (env EIGENFACES_DB_ROOT)")
	pf.IntVarP(&opts.Subjects, "subjects", "s", 0, "Number of subjects in the database (env EIGENFACES_SUBJECTS)")
	pf.IntVarP(&opts.Images, "images", "n", 0, "Number of images per subject (env EIGENFACES_IMAGES)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "Structured log level: debug, info, warn, error (default: off)")
	pf.StringVar(&opts.LogFormat, "log-format", "console", "Structured log format: console, json")
	pf.BoolVarP(&opts.Quiet, "quiet", "q", false, "Hide progress bars")
	pf.StringVar(&dbURL, "postgres", "", "PostgreSQL connection string (default: postgres://localhost:5432/eigenfaces)")
}

// loadDotEnv reads an optional .env file from the working directory.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// applyEnv fills database parameters from the environment when the
// corresponding flag was not given on the command line.
func applyEnv(cmd *cobra.Command, o *Options) {
	flags := cmd.Flags()
	if v := os.Getenv("EIGENFACES_DB_ROOT"); v != "" && !flags.Changed("db-root") {
		o.DBRoot = v
	}
	if v, err := strconv.Atoi(os.Getenv("EIGENFACES_SUBJECTS")); err == nil && !flags.Changed("subjects") {
		o.Subjects = v
	}
	if v, err := strconv.Atoi(os.Getenv("EIGENFACES_IMAGES")); err == nil && !flags.Changed("images") {
		o.Images = v
	}
}

// validateOptions checks the flags. Database parameters are only checked
// when the command needs a model.
func validateOptions(o *Options, needDatabase bool) error {
	var err error
	if needDatabase {
		err = validate.Struct(o)
	} else {
		err = validate.StructExcept(o, "DBRoot", "Subjects", "Images")
	}
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid value %v for %s (rule: %s)", fe.Value(), flagName(fe.Field()), fe.Tag())
		}
		return err
	}
	return nil
}

func flagName(field string) string {
	switch field {
	case "DBRoot":
		return "--db-root"
	case "Subjects":
		return "--subjects"
	case "Images":
		return "--images"
	case "LogLevel":
		return "--log-level"
	case "LogFormat":
		return "--log-format"
	}
	return field
}

// resolveDSN builds the connection string from the flag or the environment.
func resolveDSN() string {
	if dbURL != "" {
		return dbURL
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := os.Getenv("POSTGRES_DB")
		port := os.Getenv("POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	// Fallback to local default if no env vars are present
	return "postgres://localhost:5432/eigenfaces"
}

// openStore connects to PostgreSQL for commands that persist coordinates.
func openStore(ctx context.Context) error {
	var err error
	DB, err = store.New(ctx, resolveDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// loadModel builds the eigenface model for the configured database,
// reporting progress on stderr and to the structured logger.
func loadModel(ctx context.Context) (*eigenface.Model, error) {
	if err := validateOptions(&opts, true); err != nil {
		return nil, err
	}
	cfg := eigenface.Config{Root: opts.DBRoot, Subjects: opts.Subjects, Images: opts.Images}

	obs := eigenface.MultiObserver{logging.Observer{Logger: logger}}
	if !opts.Quiet {
		obs = append(obs, newBarObserver(cfg.Len()))
	}

	fmt.Fprintf(os.Stderr, "📂 Face database: %s (%d subjects × %d images)\n", cfg.Root, cfg.Subjects, cfg.Images)
	model, err := eigenface.New(ctx, cfg, eigenface.WithObserver(obs))
	if err != nil {
		return nil, err
	}
	logger.Info("model ready",
		zap.Int("width", model.Width()),
		zap.Int("height", model.Height()),
		zap.Int("faces", model.Len()),
		zap.Int("rank", model.Rank()),
	)
	return model, nil
}
