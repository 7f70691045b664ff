package feed

import (
	"encoding/xml"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"economist-podcast/internal/archive"
	"economist-podcast/internal/metadata"
)

// FileName is the feed document at the root of the published tree.
const FileName = "feed.xml"

// Metadata holds the channel-level fields of the feed document.
type Metadata struct {
	Title       string
	Description string
	Language    string
	Author      string
	Explicit    string
}

// Builder regenerates the feed document from the live directory tree. It
// keeps no memory of past runs: the item set, order and identifiers are fully
// determined by what is on disk, so rebuilding an unchanged tree yields a
// byte-identical document.
type Builder struct {
	baseDir string
	siteURL string
	meta    Metadata
	logger  *log.Logger
}

// NewBuilder returns a builder publishing under the given site URL prefix
// (scheme://host/repo, no trailing slash).
func NewBuilder(baseDir, siteURL string, meta Metadata, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		baseDir: baseDir,
		siteURL: strings.TrimRight(siteURL, "/"),
		meta:    meta,
		logger:  logger,
	}
}

// Build renders the feed document for the current tree state. now is only
// used as the pubDate fallback for directories whose date token does not
// parse.
func (b *Builder) Build(now time.Time) ([]byte, int, error) {
	dirs, err := b.episodeDirs()
	if err != nil {
		return nil, 0, err
	}

	rss := rssFeed{
		Version:   "2.0",
		ITunesNS:  "http://www.itunes.com/dtds/podcast-1.0.dtd",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:          b.meta.Title,
			Description:    b.meta.Description,
			Language:       b.meta.Language,
			Link:           b.siteURL + "/" + FileName,
			ITunesAuthor:   b.meta.Author,
			ITunesExplicit: b.meta.Explicit,
		},
	}

	for _, dir := range dirs {
		files, err := b.segmentFiles(dir)
		if err != nil {
			b.logger.Printf("skipping %s: %v", dir, err)
			continue
		}
		for _, name := range files {
			rss.Channel.Items = append(rss.Channel.Items, b.item(dir, name, now))
		}
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return nil, 0, err
	}

	return append([]byte(xml.Header), output...), len(rss.Channel.Items), nil
}

// Write regenerates the feed document on disk and returns the item count.
func (b *Builder) Write(now time.Time) (int, error) {
	data, items, err := b.Build(now)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(b.baseDir, FileName), data, 0o644); err != nil {
		return 0, err
	}
	return items, nil
}

// episodeDirs lists dated episode directories in the live tree, newest date
// token first.
func (b *Builder) episodeDirs() ([]string, error) {
	entries, err := os.ReadDir(b.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.baseDir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), archive.EpisodePrefix) {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	return dirs, nil
}

// segmentFiles lists the .mp3 files of one episode directory. The
// lexicographic order equals numeric order thanks to the zero-padded indices.
func (b *Builder) segmentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(b.baseDir, dir))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".mp3") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	return files, nil
}

func (b *Builder) item(dir, name string, now time.Time) rssItem {
	dateToken := strings.TrimPrefix(dir, archive.EpisodePrefix)

	titlePart := strings.TrimSuffix(name, ".mp3")
	if idx := strings.Index(titlePart, " - "); idx >= 0 {
		titlePart = titlePart[idx+3:]
	}

	fileURL := b.siteURL + "/" + escapeSpaces(dir) + "/" + escapeSpaces(name)

	item := rssItem{
		Title:       dateToken + " - " + titlePart,
		Description: "The Economist Weekly Edition - " + titlePart,
		Enclosure: rssEnclosure{
			URL:  fileURL,
			Type: "audio/mpeg",
		},
		GUID:    fileURL,
		PubDate: pubDate(dateToken, now),
	}

	path := filepath.Join(b.baseDir, dir, name)
	info, err := metadata.SegmentInfo(path)
	if err != nil {
		b.logger.Printf("segment info for %s: %v", path, err)
		return item
	}
	item.Enclosure.Length = info.FilesizeBytes
	if info.DurationSeconds != nil {
		item.ITunesDuration = formatDuration(*info.DurationSeconds)
	}

	return item
}

// pubDate places episodes at noon UTC of their directory date; directories
// with an unparseable token fall back to the current time.
func pubDate(dateToken string, now time.Time) string {
	if t, err := time.Parse("2006-01-02", dateToken); err == nil {
		return t.Format("Mon, 02 Jan 2006") + " 12:00:00 GMT"
	}
	return now.UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
}

func escapeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int64(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

type rssFeed struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ITunesNS  string     `xml:"xmlns:itunes,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string    `xml:"title"`
	Description    string    `xml:"description"`
	Language       string    `xml:"language"`
	Link           string    `xml:"link"`
	ITunesAuthor   string    `xml:"itunes:author"`
	ITunesExplicit string    `xml:"itunes:explicit"`
	Items          []rssItem `xml:"item"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	GUID           string       `xml:"guid"`
	PubDate        string       `xml:"pubDate"`
	ITunesDuration string       `xml:"itunes:duration,omitempty"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}
