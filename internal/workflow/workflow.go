package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"economist-podcast/internal/archive"
	"economist-podcast/internal/chapters"
	"economist-podcast/internal/config"
	"economist-podcast/internal/feed"
	"economist-podcast/internal/metadata"
	"economist-podcast/internal/publish"
	"economist-podcast/internal/splitter"
)

// manifestPublication heads the chapter list written next to the segments.
const manifestPublication = "The Economist Weekly Edition"

// Status classifies the outcome of one pipeline stage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// StageResult is one row of the run summary.
type StageResult struct {
	Stage  string
	Status Status
	Detail string
}

// Publisher pushes the base directory to the remote.
type Publisher interface {
	Push(ctx context.Context, message string) error
}

// Runner wires the pipeline stages over one immutable configuration. External
// capabilities (chapter reading, segment extraction, publishing) come in
// through narrow interfaces so runs can be exercised without real processes.
type Runner struct {
	cfg       config.Config
	reader    chapters.Reader
	extractor splitter.Extractor
	publisher Publisher
	archiver  *archive.Manager
	feeds     *feed.Builder
	logger    *log.Logger
	now       func() time.Time
}

// NewRunner assembles a runner. publisher may be nil to skip the push step.
func NewRunner(cfg config.Config, reader chapters.Reader, extractor splitter.Extractor, publisher Publisher, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		cfg:       cfg,
		reader:    reader,
		extractor: extractor,
		publisher: publisher,
		archiver:  archive.NewManager(cfg.BaseDir, logger),
		feeds: feed.NewBuilder(cfg.BaseDir, cfg.SiteURL(), feed.Metadata{
			Title:       cfg.Feed.Title,
			Description: cfg.Feed.Description,
			Language:    cfg.Feed.Language,
			Author:      cfg.Feed.Author,
			Explicit:    cfg.Feed.Explicit,
		}, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Run executes the full pipeline once: split every dropped source file,
// retire superseded episode directories, regenerate the feed, push. A failed
// source never stops its siblings, the feed rebuild or the publish step; the
// feed is durable on disk before the push is attempted.
func (r *Runner) Run(ctx context.Context) []StageResult {
	var results []StageResult
	record := func(stage string, status Status, detail string) {
		results = append(results, StageResult{Stage: stage, Status: status, Detail: detail})
	}

	r.logger.Printf("processing %s (feed: %s)", r.cfg.BaseDir, r.cfg.FeedURL())

	if err := os.MkdirAll(r.archiver.Dir(), 0o755); err != nil {
		record("prepare", StatusFailed, err.Error())
		return results
	}
	if err := publish.EnsureGitignore(r.cfg.BaseDir); err != nil {
		r.logger.Printf("write .gitignore: %v", err)
		record("prepare", StatusFailed, err.Error())
	}

	sources, err := r.findSources()
	if err != nil {
		record("discover", StatusFailed, err.Error())
	}

	if len(sources) == 0 {
		record("process", StatusSkipped, "no new MP3 files")
	} else {
		r.logger.Printf("found %d MP3 file(s) to process", len(sources))
		for _, source := range sources {
			results = append(results, r.processSource(ctx, source))
		}

		archived, err := r.archiver.RetireOldEpisodes()
		switch {
		case err != nil:
			record("archive", StatusFailed, err.Error())
		case len(archived) == 0:
			record("archive", StatusSkipped, "no old episodes")
		default:
			record("archive", StatusOK, fmt.Sprintf("retired %s", strings.Join(archived, ", ")))
		}
	}

	items, err := r.feeds.Write(r.now())
	if err != nil {
		r.logger.Printf("rebuild feed: %v", err)
		record("feed", StatusFailed, err.Error())
	} else {
		r.logger.Printf("feed rebuilt with %d item(s)", items)
		record("feed", StatusOK, fmt.Sprintf("%d items", items))
	}

	results = append(results, r.publishResult(ctx))
	return results
}

func (r *Runner) publishResult(ctx context.Context) StageResult {
	if r.publisher == nil {
		return StageResult{Stage: "publish", Status: StatusSkipped, Detail: "publishing disabled"}
	}

	message := "Economist episode " + r.now().Format("2006-01-02")
	if err := r.publisher.Push(ctx, message); err != nil {
		r.logger.Printf("publish: %v", err)
		r.logger.Print(publish.Remediation(r.cfg.GitHubUsername, r.cfg.GitHubRepo))
		return StageResult{Stage: "publish", Status: StatusFailed, Detail: err.Error()}
	}
	return StageResult{Stage: "publish", Status: StatusOK, Detail: message}
}

// findSources lists MP3 files dropped at the top of the base directory.
func (r *Runner) findSources() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.cfg.BaseDir, err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			sources = append(sources, filepath.Join(r.cfg.BaseDir, entry.Name()))
		}
	}
	return sources, nil
}

// processSource splits one dropped file into its dated episode directory and
// archives the original. Any failure is contained to this source.
func (r *Runner) processSource(ctx context.Context, source string) StageResult {
	name := filepath.Base(source)
	stage := "split " + name
	fail := func(err error) StageResult {
		r.logger.Printf("%s: %v", stage, err)
		return StageResult{Stage: stage, Status: StatusFailed, Detail: err.Error()}
	}

	dateToken := r.now().Format("2006-01-02")
	outDir := filepath.Join(r.cfg.BaseDir, archive.EpisodePrefix+dateToken)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fail(fmt.Errorf("create %s: %w", outDir, err))
	}

	r.logger.Printf("processing %s into %s", name, filepath.Base(outDir))

	working := filepath.Join(outDir, "original.mp3")
	if err := archive.Move(source, working); err != nil {
		return fail(fmt.Errorf("move into episode directory: %w", err))
	}

	chaps, err := r.reader.ReadChapters(working)
	if errors.Is(err, chapters.ErrNoChapters) {
		// Degrade to a whole-file segment instead of failing the source.
		kept := passthroughName(working, name)
		if err := archive.Move(working, filepath.Join(outDir, kept)); err != nil {
			return fail(fmt.Errorf("keep whole file: %w", err))
		}
		r.logger.Printf("no chapters in %s, kept whole file as %s", name, kept)
		return StageResult{Stage: stage, Status: StatusSkipped, Detail: "no chapters, kept whole file"}
	}
	if err != nil {
		return fail(fmt.Errorf("read chapters: %w", err))
	}
	r.logger.Printf("found %d chapters", len(chaps))

	sequenced := chapters.Sequence(chaps)
	result, err := splitter.Split(ctx, r.extractor, sequenced, working, outDir, manifestPublication, r.logger)
	if err != nil {
		return fail(err)
	}

	if _, err := r.archiver.StoreOriginal(working, dateToken); err != nil {
		// The original stays in the episode directory; the ignore rule on
		// original*.mp3 still keeps it out of the published tree.
		r.logger.Printf("%s: %v", stage, err)
	}

	detail := fmt.Sprintf("%d segments", len(result.Produced))
	if result.Skipped > 0 {
		detail += fmt.Sprintf(", %d too short", result.Skipped)
	}
	if result.Failed > 0 {
		detail += fmt.Sprintf(", %d failed", result.Failed)
	}
	return StageResult{Stage: stage, Status: StatusOK, Detail: detail}
}

// passthroughName names a kept whole file after its embedded title tag when
// one exists, else its original basename.
func passthroughName(path, fallback string) string {
	if title := chapters.SanitizeTitle(metadata.ReadTitle(path)); title != "" {
		return title + ".mp3"
	}
	return fallback
}
