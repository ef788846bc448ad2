package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allocview/internal/aggregator"
	"github.com/allocview/internal/editor"
	"github.com/allocview/internal/locator"
	"github.com/allocview/internal/report"
	"github.com/allocview/internal/viewer"
	"github.com/allocview/pkg/filter"
	"github.com/allocview/pkg/model"
	"github.com/allocview/pkg/profiling"
	"github.com/allocview/pkg/utils"
)

var (
	// View command flags
	inputFile    string
	filterExpr   string
	pageSize     int
	sampleRate   float64
	warmup       bool
	selfDemo     bool
	projectRoots []string
	outputFile   string
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Build the allocation tree and explore it interactively",
	Long: `Build a tree of allocations grouped by attributed source location and
open it in an interactive collapsible menu.

Samples come from an existing heap profile in pprof format (--input,
a file path or the http URL of a live pprof endpoint) or from running
the built-in demo workload under allocation sampling (--self-demo).
With --output the tree is written as a JSON report instead of opening
the interactive viewer.

Inside the viewer:
  j/k or arrows  move the cursor
  enter/space    fold or unfold the current node
  o              open the current location in the editor
  f              re-filter the current allocation's frames with the
                 session's display filter
  r              reset the current allocation's frames to the default
                 in-project view
  a              show the full untruncated stack
  q              quit`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Heap profile in pprof format (file path or http URL)")
	viewCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the tree as a JSON report (.gz to compress) instead of opening the viewer")
	viewCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "Display filter expression")
	viewCmd.Flags().IntVar(&pageSize, "page-size", 0, "Maximum visible tree lines (0: use config)")
	viewCmd.Flags().Float64Var(&sampleRate, "sample-rate", 0, "Allocation sample rate in (0, 1] (0: use config)")
	viewCmd.Flags().BoolVar(&warmup, "warmup", false, "Run the workload once before sampling")
	viewCmd.Flags().BoolVar(&selfDemo, "self-demo", false, "Sample a built-in demo workload")
	viewCmd.Flags().StringArrayVar(&projectRoots, "root", nil, "Project root directory (repeatable; default: config or cwd)")
}

func runView(cmd *cobra.Command, args []string) error {
	log := interactiveLogger()

	roots := projectRoots
	if len(roots) == 0 {
		roots = cfg.ProjectRoots()
	}
	loc := locator.New(roots)

	snap, err := fetchSnapshot(log)
	if err != nil {
		return err
	}

	display, err := filter.Compile(filterExpr, loc)
	if err != nil {
		return err
	}

	tree := aggregator.New(loc, log).Build(display, snap)
	summary := tree.Summary()
	if summary.Groups == 0 {
		if summary.UnattributedCount > 0 {
			return fmt.Errorf("no allocations attributed to project code (%d samples outside the project roots %s)",
				summary.UnattributedCount, strings.Join(roots, ", "))
		}
		return fmt.Errorf("profile contains no allocation samples")
	}

	if outputFile != "" {
		if err := report.FromTree(tree, snap).WriteFile(outputFile); err != nil {
			return err
		}
		fmt.Printf("Report written to %s (%d groups, %d allocations)\n",
			outputFile, summary.Groups, summary.AttributedCount)
		return nil
	}

	maxPage := pageSize
	if maxPage <= 0 {
		maxPage = cfg.Viewer.MaxPageSize
	}
	opener := editor.NewCommandOpener(cfg.Viewer.EditorCommand, log)

	return viewer.Run(tree, display, loc, opener, log, maxPage)
}

// fetchSnapshot obtains allocation samples from the profile file or by
// running the demo workload under sampling.
func fetchSnapshot(log utils.Logger) (*model.Snapshot, error) {
	switch {
	case inputFile != "":
		return profiling.LoadSource(inputFile, log)
	case selfDemo:
		opts := profiling.Options{
			SampleRate: sampleRate,
			PageSize:   pageSize,
			Warmup:     warmup || cfg.Profiling.Warmup,
		}
		if opts.SampleRate == 0 {
			opts.SampleRate = cfg.Profiling.SampleRate
		}
		return profiling.NewSampler(log).Run(demoWorkload, opts)
	default:
		return nil, fmt.Errorf("either --input or --self-demo is required")
	}
}

// interactiveLogger returns a logger safe for the TUI session: stderr
// logging would corrupt the display, so without a configured log file
// messages are discarded.
func interactiveLogger() utils.Logger {
	if cfg.Log.OutputPath != "" {
		return logger
	}
	return &utils.NullLogger{}
}

// demoWorkload allocates through several shapes so the demo tree has
// slices, maps and strings attributed to distinct lines.
func demoWorkload() {
	var keep [][]byte
	for i := 0; i < 200; i++ {
		keep = append(keep, make([]byte, 1024))
	}

	index := make(map[string][]int)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i%10)
		index[key] = append(index[key], i)
	}

	var parts []string
	for i := 0; i < 50; i++ {
		parts = append(parts, strings.Repeat("x", i))
	}
	_ = strings.Join(parts, ",")
	_ = keep
}
