package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Browse the curated document store",
	}

	level := &cobra.Command{
		Use:   "level [1-6]",
		Short: "List curated characters for a grade",
		Args:  cobra.ExactArgs(1),
		Run:   runDocsLevel,
	}

	typ := &cobra.Command{
		Use:   "type [type]",
		Short: "List curated characters of a structural type",
		Args:  cobra.ExactArgs(1),
		Run:   runDocsType,
	}

	pathway := &cobra.Command{
		Use:   "pathway [1-6]",
		Short: "Show the learning pathway for a grade",
		Args:  cobra.ExactArgs(1),
		Run:   runDocsPathway,
	}

	interests := &cobra.Command{
		Use:   "interests",
		Short: "List interest categories",
		Args:  cobra.NoArgs,
		Run:   runDocsInterests,
	}

	cmd.AddCommand(level, typ, pathway, interests)
	RootCmd.AddCommand(cmd)
}

func parseGrade(arg string) int {
	n, err := strconv.Atoi(arg)
	if err != nil {
		exitErr("grade", fmt.Errorf("grade must be a number, got %q", arg))
	}
	return int(model.ClampLevel(n))
}

func runDocsLevel(cmd *cobra.Command, args []string) {
	grade := parseGrade(args[0])

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.CharactersByLevel(cmd.Context(), grade)
	if err != nil {
		exitErr("docs level", err)
	}
	emitRecords(records)
}

func runDocsType(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.CharactersByType(cmd.Context(), args[0])
	if err != nil {
		exitErr("docs type", err)
	}
	emitRecords(records)
}

func runDocsPathway(cmd *cobra.Command, args []string) {
	grade := parseGrade(args[0])

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.LearningPathway(cmd.Context(), grade)
	if err != nil {
		exitErr("docs pathway", err)
	}
	emit(p, func(w io.Writer) {
		fmt.Fprintf(w, "%d年级: %s\n", p.Grade, strings.Join(p.Characters, " → "))
	})
}

func runDocsInterests(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	categories, err := s.InterestCategories(cmd.Context())
	if err != nil {
		exitErr("docs interests", err)
	}
	emit(categories, func(w io.Writer) {
		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s: %s\n", name, strings.Join(categories[name], " "))
		}
	})
}

func emitRecords(records []model.CharacterRecord) {
	emit(records, func(w io.Writer) {
		for _, r := range records {
			fmt.Fprintf(w, "%s  [%s]  %d年级  %s\n", r.Character, r.Type, r.Level, firstLine(r.Explanation))
		}
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
