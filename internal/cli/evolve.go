package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "evolve [character]",
		Short: "Describe how a character evolved",
		Long:  "Describe a character from oracle-bone script to the modern form, split into stages.",
		Args:  cobra.ExactArgs(1),
		Run:   runEvolve,
	}

	RootCmd.AddCommand(cmd)
}

func runEvolve(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	res, err := a.knowledge.Evolution(cmd.Context(), args[0])
	if err != nil {
		exitErr("evolve", err)
	}

	emit(res, func(w io.Writer) {
		if len(res.Value.Stages) == 0 {
			fmt.Fprintln(w, res.Value.Text)
		}
		for i, stage := range res.Value.Stages {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, stage)
		}
		sourceLine(w, res.Source)
	})
}
