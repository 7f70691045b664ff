package splitter

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"economist-podcast/internal/models"
)

// MinChapterSeconds is the shortest chapter worth publishing as its own file.
const MinChapterSeconds = 60.0

// ManifestName sorts before every numbered segment in the directory listing.
const ManifestName = "00 - Chapter List.txt"

// Extractor copies one time range out of an audio file without re-encoding.
// A failed extraction may simply not produce dest; callers must verify the
// file exists afterwards.
type Extractor interface {
	Extract(ctx context.Context, source string, startSeconds, durationSeconds float64, dest string) error
}

// Result reports what one split pass produced.
type Result struct {
	Produced []string // segment file names, final order
	Skipped  int      // chapters under MinChapterSeconds
	Failed   int      // extractions that produced no file
}

// Split writes one numbered segment per kept chapter of the already-sequenced
// list, then the manifest. Chapters under the minimum duration are dropped
// and consume no index; so are chapters whose extraction produces no file, so
// the numbering of files that do exist stays contiguous from 01. A single
// failed extraction never stops the remaining chapters.
func Split(ctx context.Context, extractor Extractor, sequenced []models.Chapter, source, outDir, publication string, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Default()
	}

	var result Result
	index := 1
	for _, chapter := range sequenced {
		if chapter.Duration < MinChapterSeconds {
			result.Skipped++
			logger.Printf("skipped %q (%.1fs, too short)", chapter.Title, chapter.Duration)
			continue
		}

		name := fmt.Sprintf("%02d - %s.mp3", index, chapter.Title)
		dest := filepath.Join(outDir, name)
		if err := extractor.Extract(ctx, source, chapter.StartTime, chapter.Duration, dest); err != nil {
			logger.Printf("extract %q: %v", chapter.Title, err)
		}

		if _, err := os.Stat(dest); err != nil {
			result.Failed++
			logger.Printf("no output for %q, dropped from numbering", chapter.Title)
			continue
		}

		result.Produced = append(result.Produced, name)
		logger.Printf("%02d. %s (%.1f min)", index, chapter.Title, chapter.Duration/60)
		index++
	}

	if err := writeManifest(outDir, publication, result.Produced); err != nil {
		return result, fmt.Errorf("write manifest: %w", err)
	}

	return result, nil
}

func writeManifest(outDir, publication string, produced []string) error {
	var b strings.Builder
	b.WriteString(publication + "\n")
	b.WriteString("Processed: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	for _, name := range produced {
		b.WriteString(name + "\n")
	}

	return os.WriteFile(filepath.Join(outDir, ManifestName), []byte(b.String()), 0o644)
}
