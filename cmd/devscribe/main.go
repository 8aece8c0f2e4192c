// Command devscribe serves a DevScribe site and queries its post catalog
// from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/devscribe"
	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/storage"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath  string
	contentFile string
	searchText  string
	category    string
	tags        []string
)

var rootCmd = &cobra.Command{
	Use:           "devscribe",
	Short:         "DevScribe - a blog engine built with Go, Echo, and templ",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	Long:  `Loads the config file (if given), applies DEVSCRIBE_* environment overrides and serves until interrupted.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List posts, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		q := content.Query{Search: strings.TrimSpace(searchText), Category: category, Tags: tags}
		return printPosts(cmd.OutOrStdout(), catalog.Filter(q))
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories in first-occurrence order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		return printLines(cmd.OutOrStdout(), catalog.Categories())
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags in first-occurrence order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		return printLines(cmd.OutOrStdout(), catalog.Tags())
	},
}

var clientCmd = &cobra.Command{
	Use:   "client <id>",
	Short: "Print the stored state of one client",
	Long:  `Opens the configured storage and prints every key stored for the client, one key=value per line.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runClient,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the devscribe version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "devscribe %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&contentFile, "content", "", "YAML post file (default: embedded seed)")
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	clientCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	postsCmd.Flags().StringVarP(&searchText, "search", "s", "", "search title, excerpt and tags")
	postsCmd.Flags().StringVar(&category, "category", "", "only this category")
	postsCmd.Flags().StringSliceVar(&tags, "tag", nil, "only posts with any of these tags")

	rootCmd.AddCommand(serveCmd, postsCmd, categoriesCmd, tagsCmd, clientCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadCatalog() (*content.Catalog, error) {
	if contentFile != "" {
		return content.LoadFile(contentFile)
	}
	return content.Seed()
}

// loadConfig reads --config when given and applies DEVSCRIBE_* overrides.
func loadConfig() (devscribe.SiteConfig, error) {
	var cfg devscribe.SiteConfig
	if configPath != "" {
		loaded, err := devscribe.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runClient(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Defaults()
	backend, err := storage.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return err
	}
	defer backend.Close()

	state, err := storage.Scope(backend, args[0]).Dump(cmd.Context())
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w := cmd.OutOrStdout()
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, state[k]); err != nil {
			return err
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if contentFile != "" {
		cfg.ContentFile = contentFile
	}

	var catalog *content.Catalog
	if cfg.ContentFile != "" {
		catalog, err = content.LoadFile(cfg.ContentFile)
	} else {
		catalog, err = content.Seed()
	}
	if err != nil {
		return err
	}

	app := devscribe.New(cfg, catalog, devscribe.DefaultViews())
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}

func printPosts(w io.Writer, posts []content.Post) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tCATEGORY\tPUBLISHED\tTITLE")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Slug, p.Category, p.PublishedAt, p.Title)
	}
	return tw.Flush()
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
