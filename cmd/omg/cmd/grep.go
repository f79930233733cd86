package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/OpenModelica/OMGraphics/pkg/search"
)

var (
	grepPatterns []string

	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	lineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

var grepCmd = &cobra.Command{
	Use:   "grep <text> <path>...",
	Short: "Search library files for text",
	Long: `Search the Modelica files under one or more paths for a text,
ignoring case, and print every matching line.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGrep,
}

func init() {
	rootCmd.AddCommand(grepCmd)
	grepCmd.Flags().StringSliceVar(&grepPatterns, "include", nil, "file name patterns (default *.mo)")
}

func runGrep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, errc := search.Start(ctx, search.Request{
		Query:    args[0],
		Roots:    args[1:],
		Patterns: grepPatterns,
		Logger:   logger,
	})

	w := cmd.OutOrStdout()
	found := 0
	for m := range results {
		found++
		lines := make([]int, 0, len(m.Lines))
		for n := range m.Lines {
			lines = append(lines, n)
		}
		slices.Sort(lines)
		for _, n := range lines {
			fmt.Fprintf(w, "%s:%s: %s\n", fileStyle.Render(m.FileName), lineStyle.Render(fmt.Sprint(n)), m.Lines[n])
		}
	}
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Debug("search done", "matched", found)
	return nil
}
