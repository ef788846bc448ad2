package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/allocview/pkg/config"
	"github.com/allocview/pkg/utils"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger utils.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "allocview",
	Short: "An interactive viewer for memory-allocation profiles",
	Long: `allocview groups sampled allocations by the source location responsible
for them and presents the result as a collapsible tree. Stack frames
shown under each allocation can be re-filtered live with a small
boolean expression language over packages, files, functions, types
and sizes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			level = utils.LevelDebug
		}

		if cfg.Log.OutputPath != "" {
			fileLogger, err := utils.NewFileLogger(level, cfg.Log.OutputPath)
			if err != nil {
				return err
			}
			logger = fileLogger
		} else {
			logger = utils.NewDefaultLogger(level, os.Stderr)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default: ./allocview.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	binName := BinName()
	rootCmd.Example = `  # View an existing heap profile
  ` + binName + ` view -i heap.pprof

  # View with a display filter: project frames in pkg/parser at lines 10-40
  ` + binName + ` view -i heap.pprof --filter '"parser.go":10-40'

  # Sample a built-in demo workload and explore it
  ` + binName + ` view --self-demo --sample-rate 1

  # Fetch a profile from a live process and export the tree as JSON
  ` + binName + ` view -i http://localhost:6060/debug/pprof/heap -o report.json

  # Check a filter expression without viewing anything
  ` + binName + ` filter '"@mypkg" && :iterate && !32'`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
