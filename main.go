// gallery-builder generates a static photo gallery index from a directory
// of dated album folders.
//
// The build scans the gallery root for YYYYMMDD_name folders, resolves each
// folder's cover image and link target, and writes a data.json manifest plus
// an index.html page rendering the albums newest first. The serve command
// additionally runs a local HTTP server over the root and rebuilds the
// artifacts whenever the folders change on disk.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gallery-builder/internal/browser"
	"gallery-builder/internal/build"
	"gallery-builder/internal/config"
	"gallery-builder/internal/logging"
	"gallery-builder/internal/metrics"
	"gallery-builder/internal/preview"

	"github.com/spf13/cobra"
)

var (
	flagRoot      string
	flagAscending bool
	flagRecursive bool
	flagNoThumbs  bool
	flagOpen      bool
	flagPort      string
	flagQuiet     bool
)

// rootCmd builds the gallery when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gallery-builder [root]",
	Short: "Generate a static photo gallery index from dated folders",
	Long: `gallery-builder scans a directory of dated album folders, finds each
album's cover image, and writes a data.json manifest plus an index.html
page that renders the albums as a grid.

Folders are expected to be named YYYYMMDD_name; folders without a valid
date prefix sort after the dated ones. Folders starting with "." or "_"
are skipped, as are folders with no cover image.

Run without a subcommand to build once. Use "serve" to build and then
serve the gallery locally with automatic rebuilds on change.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagQuiet {
			logging.SetLevel(logging.LevelError)
		}
		metrics.SetAppInfo(config.Version, config.Commit)
	},
	RunE: runBuild,
}

var buildCmd = &cobra.Command{
	Use:   "build [root]",
	Short: "Build the gallery manifest and index page once",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

var serveCmd = &cobra.Command{
	Use:   "serve [root]",
	Short: "Build the gallery, then serve it locally and rebuild on change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.BuildInfo())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "gallery root directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&flagAscending, "ascending", false, "sort dated albums oldest first")
	rootCmd.PersistentFlags().BoolVar(&flagRecursive, "recursive", false, "scan nested folders, not just immediate children")
	rootCmd.PersistentFlags().BoolVar(&flagNoThumbs, "no-thumbnails", false, "skip thumbnail generation")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log errors")

	rootCmd.Flags().BoolVar(&flagOpen, "open", false, "open the generated page in a browser")
	buildCmd.Flags().BoolVar(&flagOpen, "open", false, "open the generated page in a browser")
	serveCmd.Flags().StringVarP(&flagPort, "port", "p", "", "HTTP port (default: 8080)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the gallery root from the positional argument, the
// --root flag, or the environment, then applies the other flags on top.
func loadConfig(args []string) (*config.Config, error) {
	if len(args) > 0 {
		os.Setenv("GALLERY_ROOT", args[0])
	} else if flagRoot != "" {
		os.Setenv("GALLERY_ROOT", flagRoot)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagAscending {
		cfg.SortDescending = false
	}
	if flagRecursive {
		cfg.OnlyImmediateChildren = false
	}
	if flagNoThumbs {
		cfg.ThumbnailsEnabled = false
	}
	if flagOpen {
		cfg.AutoOpen = true
	}
	if flagPort != "" {
		cfg.Port = flagPort
	}

	return cfg, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	builder, err := build.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer builder.Close()

	result, err := builder.Run(ctx)
	if err != nil {
		return err
	}

	logging.Info("Wrote %s and %s: %d entries in %s",
		cfg.OutputJSON, cfg.OutputHTML, result.Entries, result.Duration.Round(time.Millisecond))

	if cfg.AutoOpen {
		browser.Open(cfg.PageFilePath())
	}

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	builder, err := build.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer builder.Close()

	if _, err := builder.Run(ctx); err != nil {
		return err
	}

	srv := preview.New(cfg, builder)
	if cfg.AutoOpen {
		browser.Open("http://localhost:" + cfg.Port + "/")
	}
	return srv.Serve(ctx)
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
