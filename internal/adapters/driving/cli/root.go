// Package cli wires the cobra command tree. Commands talk to the core
// exclusively through the driving ports; wiring injects concrete services
// at startup.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/repovec/repovec/internal/core/ports/driving"
	"github.com/repovec/repovec/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Services injected by the wiring layer before Execute.
var (
	catalogService   driving.CatalogManager
	ingestService    driving.Ingestor
	retrieverService driving.Retriever
)

// Persistent flags.
var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "repovec",
	Short: "Index repositories for semantic retrieval",
	Long: `repovec ingests source repositories into a local catalog, splits
documents into token-bounded chunks, embeds them, and serves scoped
similarity search over the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if initializer != nil {
			return initializer()
		}
		return nil
	},
}

// initializer builds the services once flags are parsed, so --config is
// honoured before any wiring happens.
var initializer func() error

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.repovec/config.toml)")
}

// SetInitializer registers a function run after flag parsing and before
// any command. It is expected to call SetServices.
func SetInitializer(fn func() error) {
	initializer = fn
}

// SetServices injects the core services the commands depend on.
func SetServices(catalog driving.CatalogManager, ingestor driving.Ingestor, retriever driving.Retriever) {
	catalogService = catalog
	ingestService = ingestor
	retrieverService = retriever
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// ConfigPath returns the --config flag value.
func ConfigPath() string {
	return configPath
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
