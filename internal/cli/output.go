package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gatzby-git/shuowenjiezi/internal/knowledge"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

// emit writes v as indented JSON, or through text when --format=text.
func emit(v any, text func(w io.Writer)) {
	if formatFlag == "text" && text != nil {
		text(os.Stdout)
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func sourceLine(w io.Writer, src knowledge.Source) {
	if src == knowledge.SourceDegraded {
		fmt.Fprintf(w, "(%s: showing fallback content)\n", src)
		return
	}
	fmt.Fprintf(w, "(%s)\n", src)
}

func writeRecord(w io.Writer, r model.CharacterRecord) {
	fmt.Fprintf(w, "%s  [%s]  %d年级\n", r.Character, r.Type, r.Level)
	fmt.Fprintln(w, r.Explanation)
	if len(r.Components) > 0 {
		fmt.Fprintf(w, "部件: %s\n", strings.Join(r.Components, " "))
	}
	for i, stage := range r.EvolutionStages {
		fmt.Fprintf(w, "演变 %d: %s\n", i+1, stage)
	}
	if len(r.RelatedCharacters) > 0 {
		fmt.Fprintf(w, "相关字: %s\n", strings.Join(r.RelatedCharacters, " "))
	}
	if len(r.CommonWords) > 0 {
		fmt.Fprintf(w, "常用词: %s\n", strings.Join(r.CommonWords, "、"))
	}
}

func writeRecommendations(w io.Writer, recs []model.Recommendation) {
	for _, r := range recs {
		fmt.Fprintf(w, "%s  [%s]  %s\n", r.Character, r.Type, r.Reason)
	}
}

func writeRelated(w io.Writer, rel []model.RelatedCharacter) {
	if len(rel) == 0 {
		fmt.Fprintln(w, "no related characters")
		return
	}
	for _, r := range rel {
		fmt.Fprintf(w, "%s  [%s]  %s\n", r.Character, r.Type, r.Relation)
	}
}
