package storage

import (
	"time"

	"zenreader/internal/book"
)

// BookRecord is a row of the books table. Remote books are never stored.
type BookRecord struct {
	ID                   string
	Title                string
	FileName             string
	Content              string // Raw source text
	LastReadChapterIndex int
	Progress             int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ChapterRecord is a row of the chapters table.
type ChapterRecord struct {
	BookID       string
	ChapterIndex int // Index within book (starts at 0)
	Title        string
	Content      string
}

func newBookRecord(b book.Book) BookRecord {
	return BookRecord{
		ID:                   b.ID,
		Title:                b.Title,
		FileName:             b.FileName,
		Content:              b.Content,
		LastReadChapterIndex: b.LastReadChapterIndex,
		Progress:             b.Progress,
	}
}

func (r BookRecord) toBook(chapters []ChapterRecord) book.Book {
	b := book.Book{
		ID:                   r.ID,
		Title:                r.Title,
		FileName:             r.FileName,
		Content:              r.Content,
		Chapters:             make([]book.Chapter, len(chapters)),
		LastReadChapterIndex: r.LastReadChapterIndex,
		Progress:             r.Progress,
	}
	for i, c := range chapters {
		b.Chapters[i] = book.Chapter{Index: c.ChapterIndex, Title: c.Title, Content: c.Content}
	}
	return b
}
