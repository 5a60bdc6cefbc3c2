package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze [character]",
		Short: "Analyze a character's structure and origin",
		Args:  cobra.ExactArgs(1),
		Run:   runAnalyze,
	}

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	res, err := a.knowledge.Analysis(cmd.Context(), args[0])
	if err != nil {
		exitErr("analyze", err)
	}

	emit(res, func(w io.Writer) {
		fmt.Fprintln(w, res.Value)
		sourceLine(w, res.Source)
	})
}
