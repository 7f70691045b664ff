package chapters

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	id3v2 "github.com/bogem/id3v2/v2"

	"economist-podcast/internal/models"
)

// ErrNoChapters reports that the file carries no chapter frames. Callers are
// expected to fall back to keeping the file whole rather than treating this
// as a failure.
var ErrNoChapters = errors.New("no chapter frames found")

const maxTitleRunes = 50

// Reader extracts chapter markers from an audio file. Implementations must
// leave the file untouched.
type Reader interface {
	ReadChapters(path string) ([]models.Chapter, error)
}

// ID3Reader reads ID3v2 CHAP frames.
type ID3Reader struct{}

// ReadChapters returns the chapters embedded in the file, in the order the
// frames are stored in the tag. Start and end offsets are converted from
// milliseconds to seconds; a chapter without a textual sub-frame gets a
// positional fallback title keyed to extraction order.
func (ID3Reader) ReadChapters(path string) ([]models.Chapter, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("read tag from %s: %w", path, err)
	}
	defer tag.Close()

	frames := tag.GetFrames("CHAP")
	chapters := make([]models.Chapter, 0, len(frames))
	for _, framer := range frames {
		chap, ok := framer.(id3v2.ChapterFrame)
		if !ok {
			continue
		}

		title := chapterTitle(chap)
		if title == "" {
			title = fmt.Sprintf("Chapter_%d", len(chapters)+1)
		}

		start := chap.StartTime.Seconds()
		end := chap.EndTime.Seconds()
		chapters = append(chapters, models.Chapter{
			StartTime: start,
			Duration:  end - start,
			Title:     title,
		})
	}

	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}
	return chapters, nil
}

// chapterTitle returns the sanitized text of the first sub-frame that carries
// any, or "" when none does.
func chapterTitle(chap id3v2.ChapterFrame) string {
	for _, sub := range []*id3v2.TextFrame{chap.Title, chap.Description} {
		if sub == nil {
			continue
		}
		if title := SanitizeTitle(sub.Text); title != "" {
			return title
		}
	}
	return ""
}

// SanitizeTitle keeps letters, digits, space, hyphen and underscore, strips
// surrounding whitespace and truncates to 50 runes. The result is safe to use
// as a filename component.
func SanitizeTitle(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	runes := []rune(strings.TrimSpace(b.String()))
	if len(runes) > maxTitleRunes {
		runes = runes[:maxTitleRunes]
	}
	return string(runes)
}
