package metadata

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"economist-podcast/internal/models"
)

// SegmentInfo gathers the facts the feed needs about one segment file. The
// duration is only populated for MP3 files that decode cleanly; everything
// else still gets a size.
func SegmentInfo(path string) (models.SegmentInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.SegmentInfo{}, err
	}

	var durationPtr *float64
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		dur, err := mp3Duration(path)
		if err == nil && dur > 0 {
			duration := dur
			durationPtr = &duration
		}
	}

	return models.SegmentInfo{
		DurationSeconds: durationPtr,
		FilesizeBytes:   info.Size(),
	}, nil
}

// ReadTitle returns the embedded title tag, or "" when none is readable.
func ReadTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(meta.Title())
}

// mp3Duration sums frame durations over the whole file.
func mp3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
