package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allocview/internal/locator"
	"github.com/allocview/pkg/filter"
)

// filterCmd compiles a filter expression standalone, without loading a
// profile. Useful for checking an expression before a long run.
var filterCmd = &cobra.Command{
	Use:   "filter <expression>",
	Short: "Compile a filter expression and report errors",
	Long: `Compile a frame-filter expression and print whether it is valid.

Primitive matchers:
  @Label        frames from package Label; bare @ matches any project frame
  "name.go"     frames in that file (base name); "name.go":10-20 limits lines
  /regexp/      frames whose file path matches the pattern
  :name         frames in function name
  32, 16-64     allocations of those sizes
  slice, map    allocations of that type tag; slice=1024 also constrains size

Matchers combine with &&, || and ! plus parentheses. Negation applies
only within project frames: !32 means "project frames, size not 32".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := locator.New(cfg.ProjectRoots())
		compiled, err := filter.Compile(args[0], loc)
		if err != nil {
			return err
		}
		if compiled.Source() == "" {
			fmt.Println("empty expression: compiles to the default in-project filter")
			return nil
		}
		fmt.Printf("filter OK: %s\n", compiled.Source())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
}
