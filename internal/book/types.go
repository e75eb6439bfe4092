package book

// Chapter is a titled slice of a book's raw text.
type Chapter struct {
	Index   int    `json:"index"`   // Position within the book (starts at 0, no gaps)
	Title   string `json:"title"`   // Heading text or a synthetic label
	Content string `json:"content"` // Trimmed text between this heading and the next
}

// Book is the aggregate of raw text, derived chapters and reading position.
type Book struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	FileName             string    `json:"fileName"`
	Content              string    `json:"content"`
	Chapters             []Chapter `json:"chapters"`
	LastReadChapterIndex int       `json:"lastReadChapterIndex"`
	Progress             int       `json:"progress"` // 0-100
	IsRemote             bool      `json:"isRemote"`
}
