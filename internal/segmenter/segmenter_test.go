package segmenter

import (
	"reflect"
	"strings"
	"testing"

	"zenreader/internal/book"
)

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []book.Chapter
	}{
		{
			name: "empty input",
			text: "",
			want: []book.Chapter{{Index: 0, Title: FullTextTitle, Content: ""}},
		},
		{
			name: "no headings",
			text: "  just some prose\nacross two lines  \n",
			want: []book.Chapter{{Index: 0, Title: FullTextTitle, Content: "just some prose\nacross two lines"}},
		},
		{
			name: "preamble and CJK chapters",
			text: "前言内容\n第1章 开端\n正文一\n第2章 发展\n正文二",
			want: []book.Chapter{
				{Index: 0, Title: PreambleTitle, Content: "前言内容"},
				{Index: 1, Title: "第1章 开端", Content: "正文一"},
				{Index: 2, Title: "第2章 发展", Content: "正文二"},
			},
		},
		{
			name: "CJK numerals and units",
			text: "第一回 缘起\n甲\n第十二卷 终局\n乙",
			want: []book.Chapter{
				{Index: 0, Title: "第一回 缘起", Content: "甲"},
				{Index: 1, Title: "第十二卷 终局", Content: "乙"},
			},
		},
		{
			name: "indented with ideographic spaces",
			text: "　　第3节 山路\n　　路很长。",
			want: []book.Chapter{
				{Index: 0, Title: "第3节 山路", Content: "路很长。"},
			},
		},
		{
			name: "latin chapters are case-insensitive",
			text: "CHAPTER 1 Start\nalpha\nchapter 2\nbeta",
			want: []book.Chapter{
				{Index: 0, Title: "CHAPTER 1 Start", Content: "alpha"},
				{Index: 1, Title: "chapter 2", Content: "beta"},
			},
		},
		{
			name: "markdown levels one and two only",
			text: "# Part\nintro\n### Detail\nmore\n## Next\nend",
			want: []book.Chapter{
				{Index: 0, Title: "Part", Content: "intro\n### Detail\nmore"},
				{Index: 1, Title: "Next", Content: "end"},
			},
		},
		{
			name: "numbered headings",
			text: "1. One\nfirst\n10、 十\ntenth",
			want: []book.Chapter{
				{Index: 0, Title: "1. One", Content: "first"},
				{Index: 1, Title: "10、 十", Content: "tenth"},
			},
		},
		{
			name: "heading must start the line",
			text: "He read Chapter 5 aloud.\n第1章 see 第2章 later\nend.",
			want: []book.Chapter{
				{Index: 0, Title: PreambleTitle, Content: "He read Chapter 5 aloud."},
				{Index: 1, Title: "第1章 see 第2章 later", Content: "end."},
			},
		},
		{
			name: "pattern classes compete by position",
			text: "## Intro\na\n第1章 b\nc\nChapter 2\nd\n3. e\nf",
			want: []book.Chapter{
				{Index: 0, Title: "Intro", Content: "a"},
				{Index: 1, Title: "第1章 b", Content: "c"},
				{Index: 2, Title: "Chapter 2", Content: "d"},
				{Index: 3, Title: "3. e", Content: "f"},
			},
		},
		{
			name: "empty middle chapter is kept",
			text: "第1章 卷首\n第2章 正文\n内容",
			want: []book.Chapter{
				{Index: 0, Title: "第1章 卷首", Content: ""},
				{Index: 1, Title: "第2章 正文", Content: "内容"},
			},
		},
		{
			name: "empty trailing chapter is dropped",
			text: "第1章 a\n内容\n第2章 待续\n   \n",
			want: []book.Chapter{
				{Index: 0, Title: "第1章 a", Content: "内容"},
			},
		},
		{
			name: "lone heading still yields a chapter",
			text: "第1章 开端",
			want: []book.Chapter{
				{Index: 0, Title: "第1章 开端", Content: ""},
			},
		},
		{
			name: "byte order mark and CRLF",
			text: "\ufeffChapter 1\r\nline one\r\nChapter 2\r\nline two\r\n",
			want: []book.Chapter{
				{Index: 0, Title: "Chapter 1", Content: "line one"},
				{Index: 1, Title: "Chapter 2", Content: "line two"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment() = %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestSegment_Invariants(t *testing.T) {
	inputs := []string{
		"",
		" \n\t ",
		"plain",
		"第1章",
		"第1章\n第2章\n第3章",
		"# a\n# b\n",
		strings.Repeat("第1章 x\n正文\n", 50),
		"preface\n\n\n1. one\n\n2. two\n\n",
	}

	for _, text := range inputs {
		chapters := Segment(text)
		if len(chapters) == 0 {
			t.Errorf("Segment(%q) returned no chapters", text)
			continue
		}
		for i, ch := range chapters {
			if ch.Index != i {
				t.Errorf("Segment(%q)[%d].Index = %d, want %d", text, i, ch.Index, i)
			}
		}
		if again := Segment(text); !reflect.DeepEqual(chapters, again) {
			t.Errorf("Segment(%q) is not deterministic", text)
		}
	}
}

func TestTokenize(t *testing.T) {
	text := "intro\n# Title\nbody\n第2章 下\nrest"
	tokens := Default().Tokenize(text)

	if len(tokens) != 2 {
		t.Fatalf("Tokenize() returned %d tokens, want 2", len(tokens))
	}
	if tokens[0].Class != ClassMarkdown || tokens[0].Title != "Title" {
		t.Errorf("tokens[0] = %+v, want markdown Title", tokens[0])
	}
	if tokens[1].Class != ClassCJK || tokens[1].Title != "第2章 下" {
		t.Errorf("tokens[1] = %+v, want cjk 第2章 下", tokens[1])
	}
	if got := text[tokens[0].Start:tokens[0].End]; got != "# Title" {
		t.Errorf("tokens[0] span = %q, want %q", got, "# Title")
	}
}

func TestCompile(t *testing.T) {
	t.Run("no patterns", func(t *testing.T) {
		if _, err := Compile(nil); err == nil {
			t.Error("Compile(nil) expected error, got nil")
		}
	})

	t.Run("invalid expression", func(t *testing.T) {
		if _, err := Compile([]Pattern{{Name: "bad", Expr: "("}}); err == nil {
			t.Error("Compile() expected error for invalid expression, got nil")
		}
	})

	t.Run("patterns with their own groups", func(t *testing.T) {
		s, err := Compile([]Pattern{
			{Name: "part", Expr: `part[ \t]+(i+|v)`},
			{Name: "scene", Expr: `\*\*\*`},
		})
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		tokens := s.Tokenize("Part II\nx\n***\ny")
		if len(tokens) != 2 {
			t.Fatalf("Tokenize() returned %d tokens, want 2", len(tokens))
		}
		if tokens[0].Class != "part" || tokens[1].Class != "scene" {
			t.Errorf("classes = %q, %q; want part, scene", tokens[0].Class, tokens[1].Class)
		}
	})
}
