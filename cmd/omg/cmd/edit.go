package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/script"
)

var (
	editOutput  string
	editInPlace bool
)

var editCmd = &cobra.Command{
	Use:   "edit <layer_file> <script_file>",
	Short: "Apply an edit script to a layer",
	Long: `Run the commands of a script file against a layer and write the
edited annotation. Each command is an s-expression:

  (new Rectangle)
  (move 0 10 0)
  (resize 0 2 40 40)
  (rotate 0 90)
  (undo)

Numeric targets are shape z-indices. The script stops at the first failing
command and nothing is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editOutput, "output", "o", "", "output file (default stdout)")
	editCmd.Flags().BoolVarP(&editInPlace, "in-place", "i", false, "overwrite the layer file")
}

func runEdit(cmd *cobra.Command, args []string) error {
	if editInPlace && editOutput != "" {
		return fmt.Errorf("--in-place and --output are exclusive")
	}
	l, err := loadLayer(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	opts := settings.CanvasOptions()
	opts.Logger = logger
	c := diagram.NewCanvas(l, opts)
	n, err := script.New(c, logger).Run(f)
	if err != nil {
		return err
	}
	logger.Debug("script applied", "commands", n)

	out := editOutput
	if editInPlace {
		out = args[0]
	}
	return writeOutput(cmd, out, []byte(l.Annotation()+"\n"))
}
