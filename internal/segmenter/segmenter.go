package segmenter

import (
	"fmt"
	"regexp"
	"strings"

	"zenreader/internal/book"
)

const (
	// PreambleTitle labels text that appears before the first heading.
	PreambleTitle = "前言 / 序章"
	// FullTextTitle labels the single chapter of a text without headings.
	FullTextTitle = "全文"
)

// lineLead matches indentation allowed before a heading, including the
// ideographic space used to indent CJK prose.
const lineLead = `^[ \t\x{3000}\x{00A0}]*`

// Token is a heading candidate found in the text.
type Token struct {
	Class string // Name of the pattern that matched
	Start int    // Byte offset of the heading line
	End   int    // Byte offset just past the heading text
	Title string // Trimmed heading text without markdown markers
}

// Segmenter splits raw text into chapters. It holds no mutable state and is
// safe for concurrent use.
type Segmenter struct {
	re      *regexp.Regexp
	classes []string
	groups  []int // capture group index of each pattern's wrapper
}

var defaultSegmenter = MustCompile(DefaultPatterns())

// Default returns the segmenter built from DefaultPatterns.
func Default() *Segmenter {
	return defaultSegmenter
}

// Segment splits text with the default heading patterns.
func Segment(text string) []book.Chapter {
	return defaultSegmenter.Segment(text)
}

// Compile builds a Segmenter whose heading classes all compete as one token
// class: the earliest match in the text wins regardless of pattern order.
func Compile(patterns []Pattern) (*Segmenter, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("segmenter: no patterns")
	}

	s := &Segmenter{}
	alternatives := make([]string, 0, len(patterns))
	group := 1
	for _, p := range patterns {
		sub, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("segmenter: pattern %q: %w", p.Name, err)
		}
		alternatives = append(alternatives, "("+p.Expr+")")
		s.classes = append(s.classes, p.Name)
		s.groups = append(s.groups, group)
		group += 1 + sub.NumSubexp()
	}

	re, err := regexp.Compile(`(?im)` + lineLead + `(?:` + strings.Join(alternatives, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("segmenter: combine patterns: %w", err)
	}
	s.re = re
	return s, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(patterns []Pattern) *Segmenter {
	s, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return s
}

// Tokenize returns the heading tokens of text in text order.
func (s *Segmenter) Tokenize(text string) []Token {
	matches := s.re.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]Token, 0, len(matches))

	for _, m := range matches {
		for i, g := range s.groups {
			start, end := m[2*g], m[2*g+1]
			if start < 0 {
				continue
			}
			tokens = append(tokens, Token{
				Class: s.classes[i],
				Start: m[0],
				End:   m[1],
				Title: cleanTitle(text[start:end]),
			})
			break
		}
	}

	return tokens
}

// Segment splits text into chapters. It never fails and always returns at
// least one chapter; indices are dense from 0.
func (s *Segmenter) Segment(text string) []book.Chapter {
	text = strings.TrimPrefix(text, "\ufeff")
	tokens := s.Tokenize(text)

	if len(tokens) == 0 {
		return []book.Chapter{{
			Index:   0,
			Title:   FullTextTitle,
			Content: strings.TrimSpace(text),
		}}
	}

	return carve(text, tokens)
}

// carve turns heading tokens into chapters. The content of a chapter is the
// text between its heading and the next one.
func carve(text string, tokens []Token) []book.Chapter {
	chapters := make([]book.Chapter, 0, len(tokens)+1)

	if preamble := strings.TrimSpace(text[:tokens[0].Start]); preamble != "" {
		chapters = append(chapters, book.Chapter{
			Title:   PreambleTitle,
			Content: preamble,
		})
	}

	for i, tok := range tokens {
		end := len(text)
		last := i == len(tokens)-1
		if !last {
			end = tokens[i+1].Start
		}

		content := strings.TrimSpace(text[tok.End:end])

		// A heading-only section is kept unless it closes the book. The
		// trailing one survives only when it is the sole chapter.
		if content == "" && last && len(chapters) > 0 {
			continue
		}

		chapters = append(chapters, book.Chapter{
			Title:   tok.Title,
			Content: content,
		})
	}

	for i := range chapters {
		chapters[i].Index = i
	}

	return chapters
}

// cleanTitle trims a heading and strips a leading markdown marker.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.TrimLeft(title, "#")
	return strings.TrimSpace(title)
}
