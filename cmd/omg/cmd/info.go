package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/OpenModelica/OMGraphics/pkg/diagram"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(14)
)

var infoCmd = &cobra.Command{
	Use:   "info <layer_file>",
	Short: "Show layer information",
	Long: `Display the coordinate system of a layer and count its shapes
by kind.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	l, err := loadLayer(args[0])
	if err != nil {
		return err
	}
	showLayerSummary(cmd.OutOrStdout(), l, args[0])
	return nil
}

func showLayerSummary(w io.Writer, l *diagram.Layer, filename string) {
	row := func(k, v string) {
		fmt.Fprintln(w, keyStyle.Render(k)+v)
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s layer: %s", l.Kind, filename)))
	cs := l.Coords
	row("Extent", fmt.Sprintf("{%g,%g} {%g,%g}", cs.Extent[0].X, cs.Extent[0].Y, cs.Extent[1].X, cs.Extent[1].Y))
	row("Aspect ratio", fmt.Sprintf("preserve=%t", cs.PreserveAspectRatio))
	row("Scale", fmt.Sprintf("%g", cs.InitialScale))
	grid := l.GridStep()
	row("Grid", fmt.Sprintf("%g x %g", grid.X, grid.Y))
	b := l.Bounds()
	row("Bounds", fmt.Sprintf("{%g,%g} {%g,%g}", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y))
	fmt.Fprintln(w)

	byKind := make(map[string]int)
	for _, s := range l.Shapes.Shapes() {
		byKind[s.Kind().String()]++
	}
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Shapes: %d", l.Shapes.Len())))
	for _, k := range kinds {
		row("  "+k, fmt.Sprintf("%d", byKind[k]))
	}
}
