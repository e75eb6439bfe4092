package importer

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName orders items by a numeric-aware, case- and accent-insensitive
// comparison of their names, so 2.txt sorts before 10.txt. Equal names keep
// their submission order.
func SortByName[T any](items []T, name func(T) string) {
	// A Collator is not safe for concurrent use; build one per call.
	c := collate.New(language.Und,
		collate.Numeric,
		collate.IgnoreCase,
		collate.IgnoreDiacritics,
		collate.IgnoreWidth,
	)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(name(items[i]), name(items[j])) < 0
	})
}
