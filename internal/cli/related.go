package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "related [character]",
		Short: "Suggest related characters",
		Long:  "Suggest characters related in form, sound or meaning, sized to the learner's grade and interests.",
		Args:  cobra.ExactArgs(1),
		Run:   runRelated,
	}

	RootCmd.AddCommand(cmd)
}

func runRelated(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	p := a.profiles.Get(cmd.Context())
	res, err := a.knowledge.Related(cmd.Context(), args[0], p)
	if err != nil {
		exitErr("related", err)
	}

	emit(res, func(w io.Writer) {
		writeRelated(w, res.Value)
		sourceLine(w, res.Source)
	})
}
