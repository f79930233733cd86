package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenModelica/OMGraphics/pkg/render"
)

var (
	renderOutput string
	renderWidth  int
	renderHeight int
	renderTheme  string
	renderGrid   bool
	renderVars   []string
)

var renderCmd = &cobra.Command{
	Use:   "render <layer_file>",
	Short: "Render a layer to PNG",
	Long: `Rasterize a layer, fitted into the image, and write it as PNG.

Text substitutions such as %name are given with --var name=R1.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "PNG file (default <layer_file>.png)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 800, "image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 800, "image height in pixels")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "colour theme: "+strings.Join(render.ThemeNames(), ", "))
	renderCmd.Flags().BoolVar(&renderGrid, "grid", false, "draw the grid")
	renderCmd.Flags().StringArrayVar(&renderVars, "var", nil, "text substitution name=value")
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderWidth <= 0 || renderHeight <= 0 {
		return fmt.Errorf("invalid image size %dx%d", renderWidth, renderHeight)
	}
	theme := renderTheme
	if theme == "" {
		theme = settings.Theme
	}
	if !slices.Contains(render.ThemeNames(), theme) {
		return fmt.Errorf("unknown theme %q", theme)
	}
	vars, err := parseVars(renderVars)
	if err != nil {
		return err
	}

	l, err := loadLayer(args[0])
	if err != nil {
		return err
	}

	out := renderOutput
	if out == "" {
		out = args[0] + ".png"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := render.DefaultOptions()
	opts.Theme = render.LookupTheme(theme)
	opts.Grid = renderGrid
	opts.Vars = vars
	if err := render.EncodePNG(f, l, renderWidth, renderHeight, opts); err != nil {
		return fmt.Errorf("render %s: %w", args[0], err)
	}
	logger.Debug("rendered", "file", out, "width", renderWidth, "height", renderHeight)
	return f.Close()
}

func parseVars(kv []string) (map[string]string, error) {
	if len(kv) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(kv))
	for _, s := range kv {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid substitution %q, want name=value", s)
		}
		vars[k] = v
	}
	return vars, nil
}
