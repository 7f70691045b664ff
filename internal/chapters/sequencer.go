package chapters

import (
	"sort"
	"strings"

	"economist-podcast/internal/models"
)

// briefingWeight sorts briefing chapters after any real duration, so several
// briefings keep their extraction order between themselves.
const briefingWeight = 999999

// Sequence reorders chapters into the editorial running order: the news
// digest first, reader letters second, the shortest business then
// finance/economics pieces clustered early, everything else by increasing
// length, and long-form briefings last. Chapters with equal keys keep their
// extraction order.
func Sequence(chapters []models.Chapter) []models.Chapter {
	out := make([]models.Chapter, len(chapters))
	copy(out, chapters)

	sort.SliceStable(out, func(i, j int) bool {
		bi, wi := sortKey(out[i])
		bj, wj := sortKey(out[j])
		if bi != bj {
			return bi < bj
		}
		return wi < wj
	})

	return out
}

// sortKey assigns the priority bucket and secondary weight for one chapter.
// Rules are evaluated in this exact order and the first match wins; a title
// matching several rules (say "business" and "briefing") takes the earlier
// bucket.
func sortKey(c models.Chapter) (bucket int, weight float64) {
	title := strings.ToLower(c.Title)

	switch {
	case strings.Contains(title, "world this week"):
		return 1, 0
	case strings.Contains(title, "letter"):
		return 2, 0
	case strings.Contains(title, "business"):
		return 3, c.Duration
	case strings.Contains(title, "finance"), strings.Contains(title, "economic"):
		return 4, c.Duration
	case strings.Contains(title, "briefing"):
		return 6, briefingWeight
	default:
		return 5, c.Duration
	}
}
