package cmd

import (
	"github.com/spf13/cobra"
)

var formatOutput string

var formatCmd = &cobra.Command{
	Use:   "format <layer_file>",
	Short: "Print the normalized annotation of a layer",
	Long: `Parse a layer file and print it back in normal form: named
arguments, defaults left out, shapes in z-order.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)
	formatCmd.Flags().StringVarP(&formatOutput, "output", "o", "", "output file (default stdout)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	l, err := loadLayer(args[0])
	if err != nil {
		return err
	}
	return writeOutput(cmd, formatOutput, []byte(l.Annotation()+"\n"))
}
