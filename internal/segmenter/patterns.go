package segmenter

// Pattern is one class of heading marker. Expr matches the heading text of a
// single line; it is anchored to the start of a line (after optional blanks)
// by the tokenizer and must not match across newlines.
type Pattern struct {
	Name string
	Expr string
}

// Pattern class names reported on tokens.
const (
	ClassCJK      = "cjk"
	ClassChapter  = "chapter"
	ClassMarkdown = "markdown"
	ClassNumbered = "numbered"
)

// DefaultPatterns returns the heading classes recognised by Default.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// 第1章, 第十二回, 第三卷, 第２节
		{Name: ClassCJK, Expr: `第[0-9０-９零〇一二两三四五六七八九十百千万]+[章回节節卷].*`},
		// Chapter 1, CHAPTER 12: The Storm
		{Name: ClassChapter, Expr: `chapter[ \t]+[0-9]+.*`},
		// # Title, ## Title (not ###)
		{Name: ClassMarkdown, Expr: `#{1,2}[ \t]+\S.*`},
		// 1. Title, 10、标题
		{Name: ClassNumbered, Expr: `[0-9]+[.、][ \t]+\S.*`},
	}
}
