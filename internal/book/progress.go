package book

// ProgressFor returns round(100 * (index+1) / total), half rounded up.
// A book without chapters has no progress.
func ProgressFor(index, total int) int {
	if total <= 0 {
		return 0
	}
	index = ClampIndex(index, total)
	return (200*(index+1) + total) / (2 * total)
}

// ClampIndex bounds index to [0, total-1]. It returns 0 when total is not positive.
func ClampIndex(index, total int) int {
	if total <= 0 || index < 0 {
		return 0
	}
	if index >= total {
		return total - 1
	}
	return index
}

// InRange reports whether index addresses one of the book's chapters.
func (b *Book) InRange(index int) bool {
	return index >= 0 && index < len(b.Chapters)
}

// SetPosition moves the reading position to index and recomputes Progress.
// It returns false and leaves the book untouched when index is out of range.
func (b *Book) SetPosition(index int) bool {
	if !b.InRange(index) {
		return false
	}
	b.LastReadChapterIndex = index
	b.Progress = ProgressFor(index, len(b.Chapters))
	return true
}

// Chapter returns the chapter at index.
func (b *Book) Chapter(index int) (Chapter, bool) {
	if !b.InRange(index) {
		return Chapter{}, false
	}
	return b.Chapters[index], true
}

// Clone returns a copy that shares no chapter storage with b.
func (b Book) Clone() Book {
	if b.Chapters != nil {
		chapters := make([]Chapter, len(b.Chapters))
		copy(chapters, b.Chapters)
		b.Chapters = chapters
	}
	return b
}
