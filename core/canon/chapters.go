package canon

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// chapterTerm is the participle grammar for one comma-separated term.
// Examples: "5", "1-3", " 10 - 12 "
//
//nolint:govet // participle grammar tags are not standard struct tags
type chapterTerm struct {
	Start int  `@Int`
	End   *int `( "-" @Int )?`
}

var chapterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var chapterParser = participle.MustBuild[chapterTerm](
	participle.Lexer(chapterLexer),
	participle.Elide("Whitespace"),
)

// ChapterSpecError is a warning about one term of a chapter expression.
type ChapterSpecError struct {
	Term   string
	Reason string
}

func (e *ChapterSpecError) Error() string {
	return fmt.Sprintf("chapter term %q skipped: %s", e.Term, e.Reason)
}

// ResolveChapters expands a chapter expression against a book with max chapters.
//
// The expression is "all" (any case) or comma-separated integers and a-b
// ranges, e.g. "1-5,8,10". Terms that do not parse and ranges with a > b are
// reported in warnings and skipped. Chapters outside [1, max] are dropped.
// Order of first appearance is kept and duplicates are not removed.
func ResolveChapters(spec string, max int) ([]int, []error) {
	if strings.EqualFold(strings.TrimSpace(spec), "all") {
		out := make([]int, 0, max)
		for i := 1; i <= max; i++ {
			out = append(out, i)
		}
		return out, nil
	}

	var (
		out      []int
		warnings []error
	)
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		parsed, err := chapterParser.ParseString("", term)
		if err != nil {
			warnings = append(warnings, &ChapterSpecError{Term: term, Reason: "invalid format"})
			continue
		}

		if parsed.End == nil {
			if parsed.Start >= 1 && parsed.Start <= max {
				out = append(out, parsed.Start)
			}
			continue
		}

		lo, hi := parsed.Start, *parsed.End
		if lo > hi {
			warnings = append(warnings, &ChapterSpecError{Term: term, Reason: "range start exceeds end"})
			continue
		}
		// Clamp before expanding; values outside [1, max] would be dropped anyway.
		if lo < 1 {
			lo = 1
		}
		if hi > max {
			hi = max
		}
		for n := lo; n <= hi; n++ {
			out = append(out, n)
		}
	}
	return out, warnings
}
