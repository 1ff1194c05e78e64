// topodiagram builds, serves and exports network topology diagrams for
// sales proposals.
//
// Usage:
//
//	topodiagram serve [--watch survey.yaml]    Run the HTTP API and viewer
//	topodiagram export survey.yaml -f pdf     Render a survey to a file
//	topodiagram templates                     List the template catalog
//	topodiagram config init                   Write a default config file
//	topodiagram version                       Print version information
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"topodiagram/internal/config"
	"topodiagram/internal/logging"
	"topodiagram/internal/repository/sqlite"
	"topodiagram/internal/service"
	"topodiagram/internal/template"
)

// Set at build time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	gitCommit = "unknown"
)

var (
	configPath string
	logLevel   string
	verbose    bool

	// cfg is loaded by the root command before any subcommand runs
	cfg *config.Config
	// cfgSource is the file cfg was read from, "" for defaults
	cfgSource string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "topodiagram",
	Short:             "Topology diagrams for sales proposals",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `topodiagram turns a site survey (topology kind, customer and device
quantities) into a laid-out network diagram, serves it for interactive
panning, zooming and dragging, and exports it as SVG, PNG or PDF.

  topodiagram export survey.yaml -f pdf -o ./exports`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, cfgSource, err = config.LoadFromPath(configPath)
		} else {
			cfg, cfgSource, err = config.Load()
		}
		if err != nil {
			return err
		}

		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		if verbose {
			level = "debug"
		}
		return logging.Setup(level, cfg.Log.Format)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search "+config.EnvConfigPath+", ./"+config.ConfigFileName+", XDG dirs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newTemplatesCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "dev" {
				fmt.Fprintln(cmd.OutOrStdout(), "topodiagram dev build")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "topodiagram %s (%s)\n", version, gitCommit)
			}
		},
	}
}

// loadCatalog returns the builtin templates overlaid with cfg's template
// directory
func loadCatalog(c *config.Config) (*template.Catalog, error) {
	catalog, err := template.Builtin()
	if err != nil {
		return nil, err
	}
	if c.Templates.Dir != "" {
		if err := catalog.LoadDir(c.Templates.Dir); err != nil {
			return nil, fmt.Errorf("failed to load templates from %s: %w", c.Templates.Dir, err)
		}
	}
	return catalog, nil
}

// newService wires the diagram service from config. The returned close
// function releases the session store when one is open.
func newService(c *config.Config, bus *service.EventBus, withStore bool) (*service.DiagramService, func(), error) {
	catalog, err := loadCatalog(c)
	if err != nil {
		return nil, nil, err
	}

	opts := []service.Option{
		service.WithEditable(c.Viewer.Editable),
		service.WithRasterScale(c.Export.RasterScale),
	}
	closeFn := func() {}
	if withStore && c.StoreEnabled() {
		repo, err := sqlite.New(c.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session store: %w", err)
		}
		opts = append(opts, service.WithStore(repo))
		closeFn = func() { repo.Close() }
	}

	return service.NewDiagramService(catalog, bus, opts...), closeFn, nil
}
