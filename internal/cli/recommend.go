package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gatzby-git/shuowenjiezi/internal/knowledge"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend characters to learn",
		Long: "Recommend characters for a grade or an interest. Without flags the learner " +
			"profile decides: its first interest if any, otherwise its grade.",
		Args: cobra.NoArgs,
		Run:  runRecommend,
	}

	addRecommendFlags(cmd.Flags())

	RootCmd.AddCommand(cmd)
}

func runRecommend(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	ctx := cmd.Context()
	res := pickRecommendations(ctx, a.knowledge, a.profiles.Get(ctx), cmd.Flags())

	emit(res, func(w io.Writer) {
		writeRecommendations(w, res.Value)
		sourceLine(w, res.Source)
	})
}

type recommender interface {
	RecommendByLevel(ctx context.Context, level, count int) knowledge.Result[[]model.Recommendation]
	RecommendByInterest(ctx context.Context, interest string, level, count int) knowledge.Result[[]model.Recommendation]
	Recommend(ctx context.Context, p model.Profile, count int) knowledge.Result[[]model.Recommendation]
}

// pickRecommendations lets an explicit --interest or --level override the
// profile. --count alone keeps the profile's choice.
func pickRecommendations(ctx context.Context, r recommender, p model.Profile, flags *pflag.FlagSet) knowledge.Result[[]model.Recommendation] {
	level, _ := flags.GetInt("level")
	interest, _ := flags.GetString("interest")
	count, _ := flags.GetInt("count")
	if !flags.Changed("level") {
		level = p.Grade
	}

	switch {
	case flags.Changed("interest"):
		return r.RecommendByInterest(ctx, interest, level, count)
	case flags.Changed("level"):
		return r.RecommendByLevel(ctx, level, count)
	default:
		return r.Recommend(ctx, p, count)
	}
}

func addRecommendFlags(flags *pflag.FlagSet) {
	flags.IntP("level", "l", 0, "Grade 1-6 (out-of-range values use grade 1)")
	flags.StringP("interest", "i", "", "Interest topic, e.g. 自然")
	flags.IntP("count", "n", knowledge.DefaultCount, "Number of characters (1-20)")
}
