package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/debuglog"
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/session"
	"github.com/pders01/sift/internal/tui"
	"github.com/pders01/sift/internal/validation"
)

var (
	jsonOutput   bool
	historyLimit int
)

var queryCmd = &cobra.Command{
	Use:   "query <terms...>",
	Short: "Run one search and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past searches, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every past search",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var bookmarksCmd = &cobra.Command{
	Use:     "bookmarks",
	Aliases: []string{"bm"},
	Short:   "List saved results",
	Args:    cobra.NoArgs,
	RunE:    runBookmarks,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			return
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", config.AppName, Version)
		fmt.Println("Semantic docs search client")
		fmt.Println("github.com/pders01/sift")
	},
}

func init() {
	queryCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result set as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 for all)")

	historyCmd.AddCommand(historyClearCmd)
	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(queryCmd, historyCmd, bookmarksCmd, configCmd, versionCmd)
}

// cliLogging routes debug output to stderr under --verbose. Without it
// only warnings reach the log file, matching the TUI.
func cliLogging(cfg *config.Config) error {
	if verbose {
		debuglog.SetOutput(debuglog.LevelDebug, os.Stderr)
		return nil
	}
	return debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File)
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := validation.SanitizeQuery(strings.Join(args, " "))
	if query == "" {
		return errors.New("query is empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cliLogging(cfg); err != nil {
		return err
	}

	client, err := search.NewClient(cfg)
	if err != nil {
		return err
	}

	s := session.New()
	s.SetDraftQuery(query)
	if _, err := session.Run(cmd.Context(), s, client); err != nil {
		if search.IsTransportError(err) {
			return fmt.Errorf("%w (backend %s)", err, client.BaseURL())
		}
		return err
	}

	recordQuery(cfg, s.CommittedQuery(), s.ResultCount())

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, s)
	}
	printResults(out, s, cfg.UI.Relevance)
	return nil
}

// recordQuery adds the search to history. A TUI holding the database lock
// must not make the one-shot search fail.
func recordQuery(cfg *config.Config, query string, count int) {
	store, err := openStore(cfg)
	if err != nil {
		debuglog.Warnf("history not saved: %v", err)
		return
	}
	defer store.Close()

	if err := store.RecordQuery(query, count); err != nil {
		debuglog.Warnf("history not saved: %v", err)
		return
	}
	if _, err := store.PruneHistory(cfg.Storage.HistoryLimit); err != nil {
		debuglog.Warnf("pruning history: %v", err)
	}
}

func printJSON(w io.Writer, s *session.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(search.Response{
		Query:   s.CommittedQuery(),
		Count:   s.ResultCount(),
		Results: s.Results(),
	})
}

func printResults(w io.Writer, s *session.Session, th config.RelevanceConfig) {
	if s.NoResults() {
		fmt.Fprintln(w, tui.MsgNoResultsFor(s.CommittedQuery()))
		return
	}

	title := color.New(color.Bold)
	for i, r := range s.Results() {
		name := r.Title
		if name == "" {
			name = r.URL
		}
		fmt.Fprintf(w, "%2d. %s\n", i+1, title.Sprint(name))
		fmt.Fprintf(w, "    %s\n", r.URL)
		fmt.Fprintf(w, "    %s\n", relevanceColor(r.Score, th).Sprint(tui.FormatRelevance(r.Score)))
	}
	fmt.Fprintf(w, "\n%s\n", tui.MsgResultsCount(s.ResultCount()))
}

func relevanceColor(score float64, th config.RelevanceConfig) *color.Color {
	switch tui.ClassifyRelevance(score, th) {
	case tui.RelevanceHigh:
		return color.New(color.FgGreen)
	case tui.RelevanceMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.GetHistory(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, tui.MsgEmptyHistory)
		return nil
	}

	table := newTable(out, []string{"QUERY", "SEARCHES", "RESULTS", "LAST SEARCHED"})
	for _, e := range entries {
		table.AddRow([]string{
			e.Query,
			fmt.Sprintf("%d", e.Count),
			fmt.Sprintf("%d", e.LastResultCount),
			e.SearchedAt.Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ClearHistory(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
	return nil
}

func runBookmarks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	bookmarks, err := store.GetBookmarks()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(bookmarks) == 0 {
		fmt.Fprintln(out, tui.MsgEmptyBookmarks)
		return nil
	}

	table := newTable(out, []string{"TITLE", "URL", "RELEVANCE", "QUERY", "SAVED"})
	for _, b := range bookmarks {
		table.AddRow([]string{
			b.Title,
			b.URL,
			fmt.Sprintf("%.1f%%", b.Score*100),
			b.Query,
			b.SavedAt.Format("2006-01-02"),
		})
	}
	return table.Render()
}
