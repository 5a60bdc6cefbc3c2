package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "char [character]",
		Short: "Explain a character",
		Long:  "Show type, grade, explanation, components and evolution for one character.",
		Args:  cobra.ExactArgs(1),
		Run:   runChar,
	}

	RootCmd.AddCommand(cmd)
}

func runChar(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	res, err := a.knowledge.Character(cmd.Context(), args[0])
	if err != nil {
		exitErr("char", err)
	}

	emit(res, func(w io.Writer) {
		writeRecord(w, res.Value)
		sourceLine(w, res.Source)
	})
}
