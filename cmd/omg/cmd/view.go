package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenModelica/OMGraphics/internal/ui"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
)

var viewKind string

var viewCmd = &cobra.Command{
	Use:   "view [layer_file]",
	Short: "Open the graphical editor",
	Long: `Open a layer in the editor window. Without a file an empty layer
of the --kind given is created; Ctrl+O opens a file from the window.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewKind, "kind", "Diagram", "layer kind for a new layer: Icon or Diagram")
}

func runView(cmd *cobra.Command, args []string) error {
	opts := ui.Options{Settings: settings, Logger: logger}
	if len(args) == 1 {
		l, err := loadLayer(args[0])
		if err != nil {
			return err
		}
		opts.Layer = l
		opts.Path = args[0]
	} else {
		kind, ok := diagram.ParseLayerKind(viewKind)
		if !ok {
			return fmt.Errorf("unknown layer kind %q", viewKind)
		}
		opts.Layer = settings.NewLayer(kind)
	}
	return ui.Run(opts)
}
