package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/debuglog"
	"github.com/pders01/sift/internal/opener"
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/storage"
	"github.com/pders01/sift/internal/tui"
	"github.com/pders01/sift/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	cfgFile    string
	dbPath     string
	backendURL string
	quiet      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sift [query]",
	Short: "Semantic docs search in the terminal",
	Long: `sift queries a semantic search backend and lets you browse the ranked
results, open them in a browser and keep bookmarks.

Example usage:
  sift                         # Start the interactive search
  sift pytorch reshape         # Start with a query already submitted
  sift query pytorch reshape   # Print results and exit
  sift history                 # Show past searches`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (default ~/.config/sift/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "search backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr (to the log file in the TUI)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip startup banner")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	debuglog.Close()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "Error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if verbose {
		cfg.Log.Level = debuglog.LevelDebug.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	store, err := storage.NewStore(cfg.Storage.Path, cfg.Storage.Timeout)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Storage.Path, err)
	}
	return store, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return err
	}
	debuglog.Infof("starting %s %s against %s", config.AppName, Version, cfg.Backend.BaseURL)

	tui.ApplyTheme(cfg.UI.Colors)
	if !quiet {
		tui.ShowBanner(Version)
	}

	client, err := search.NewClient(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	app := tui.NewApp(client, store, opener.NewLauncher(cfg), cfg).WithContext(cmd.Context())
	if query := validation.SanitizeQuery(strings.Join(args, " ")); query != "" {
		app.Prefill(query)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
