package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatzby-git/shuowenjiezi/internal/knowledge"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the learner profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the learner profile",
		Args:  cobra.NoArgs,
		Run:   runProfileShow,
	}

	grade := &cobra.Command{
		Use:   "grade [1-6]",
		Short: "Set the learner's grade",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileGrade,
	}

	interests := &cobra.Command{
		Use:   "interests [interest...]",
		Short: "Replace the learner's interests",
		Long:  "Replace the learner's interests. Pass several arguments or one comma-separated list.",
		Run:   runProfileInterests,
	}

	learn := &cobra.Command{
		Use:   "learn [character]",
		Short: "Record that a character was studied",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileLearn,
	}
	learn.Flags().IntP("proficiency", "p", 1, "Proficiency score")

	cmd.AddCommand(show, grade, interests, learn)
	RootCmd.AddCommand(cmd)
}

func runProfileShow(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	emitProfile(a.profiles.Get(cmd.Context()))
}

func runProfileGrade(cmd *cobra.Command, args []string) {
	grade, err := strconv.Atoi(args[0])
	if err != nil || grade < model.MinLevel || grade > model.MaxLevel {
		exitErr("grade", fmt.Errorf("grade must be a number from 1 to 6, got %q", args[0]))
	}

	a := mustOpenApp()
	defer a.Close()

	emitProfile(a.profiles.SetGrade(cmd.Context(), grade))
}

func runProfileInterests(cmd *cobra.Command, args []string) {
	interests := []string{}
	for _, arg := range args {
		for _, s := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == '，' || r == '、' }) {
			if s = strings.TrimSpace(s); s != "" {
				interests = append(interests, s)
			}
		}
	}

	a := mustOpenApp()
	defer a.Close()

	emitProfile(a.profiles.UpdateInterests(cmd.Context(), interests))
}

func runProfileLearn(cmd *cobra.Command, args []string) {
	proficiency, _ := cmd.Flags().GetInt("proficiency")
	c, err := knowledge.NormalizeCharacter(args[0])
	if err != nil {
		exitErr("learn", err)
	}

	a := mustOpenApp()
	defer a.Close()

	emitProfile(a.profiles.MarkLearned(cmd.Context(), c, proficiency))
}

func emitProfile(p model.Profile) {
	emit(p, func(w io.Writer) {
		fmt.Fprintf(w, "%s (%s)\n", p.Name, p.UserID)
		fmt.Fprintf(w, "年级: %d\n", p.Grade)
		fmt.Fprintf(w, "兴趣领域: %s\n", strings.Join(p.Interests, "、"))
		fmt.Fprintf(w, "学习路径: %s\n", p.CurrentLearningPath)
		fmt.Fprintf(w, "已学汉字 (%d):", p.Stats.TotalLearned)
		for _, lc := range p.LearnedCharacters {
			fmt.Fprintf(w, " %s", lc.Character)
		}
		fmt.Fprintln(w)
	})
}
