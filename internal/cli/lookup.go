package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lookup [character]",
		Short: "Show explanation, analysis and related characters together",
		Args:  cobra.ExactArgs(1),
		Run:   runLookup,
	}

	RootCmd.AddCommand(cmd)
}

func runLookup(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	p := a.profiles.Get(cmd.Context())
	l, err := a.knowledge.Lookup(cmd.Context(), args[0], p)
	if err != nil {
		exitErr("lookup", err)
	}

	emit(l, func(w io.Writer) {
		writeRecord(w, l.Character.Value)
		sourceLine(w, l.Character.Source)
		fmt.Fprintln(w, "\n## 分析")
		fmt.Fprintln(w, l.Analysis.Value)
		sourceLine(w, l.Analysis.Source)
		fmt.Fprintln(w, "\n## 相关字")
		writeRelated(w, l.Related.Value)
		sourceLine(w, l.Related.Source)
	})
}
