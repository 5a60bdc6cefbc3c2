package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatzby-git/shuowenjiezi/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import curated characters from JSON",
		Long: "Import into the document store from a file or stdin. Accepts the document " +
			"produced by export or a plain array of character records.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	bundle, err := parseBundle(data)
	if err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), bundle)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d,"pathways":%d}`+"\n", imported, len(bundle.Pathways))
}

func parseBundle(data []byte) (*store.Bundle, error) {
	data = bytes.TrimSpace(data)
	var bundle store.Bundle
	if bytes.HasPrefix(data, []byte("[")) {
		if err := json.Unmarshal(data, &bundle.Characters); err != nil {
			return nil, err
		}
		return &bundle, nil
	}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}
