package feed

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func testMetadata() Metadata {
	return Metadata{
		Title:       "The Economist Weekly Edition (Chapters)",
		Description: "The Economist Weekly Edition split into chapters for easier listening",
		Language:    "en-us",
		Author:      "The Economist (Processed)",
		Explicit:    "no",
	}
}

func writeSegment(t *testing.T, base, dir, name string) {
	t.Helper()
	full := filepath.Join(base, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(full, name), []byte("not real mpeg audio"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestBuildEnumeratesAllRetainedSegments(t *testing.T) {
	base := t.TempDir()
	writeSegment(t, base, "Economist_2025-01-17", "01 - World This Week.mp3")
	writeSegment(t, base, "Economist_2025-01-17", "02 - Letters.mp3")
	writeSegment(t, base, "Economist_2025-01-17", "00 - Chapter List.txt")
	writeSegment(t, base, "Economist_2025-01-10", "01 - Briefing.mp3")

	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)
	data, items, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if items != 3 {
		t.Fatalf("expected one item per .mp3 file, got %d", items)
	}
	if strings.Contains(string(data), "Chapter List") {
		t.Fatalf("manifest must not appear in the feed")
	}
}

func TestBuildItemFields(t *testing.T) {
	base := t.TempDir()
	writeSegment(t, base, "Economist_2025-01-17", "01 - World This Week.mp3")

	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)
	data, _, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := string(data)

	wantURL := "https://user.github.io/repo/Economist_2025-01-17/01%20-%20World%20This%20Week.mp3"
	for _, want := range []string{
		"<title>2025-01-17 - World This Week</title>",
		"<description>The Economist Weekly Edition - World This Week</description>",
		`<enclosure url="` + wantURL + `"`,
		`type="audio/mpeg"`,
		"<guid>" + wantURL + "</guid>",
		"<pubDate>Fri, 17 Jan 2025 12:00:00 GMT</pubDate>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected feed to contain %q, got:\n%s", want, doc)
		}
	}

	size := int64(len("not real mpeg audio"))
	if !strings.Contains(doc, `length="`+strconv.FormatInt(size, 10)+`"`) {
		t.Fatalf("expected enclosure length %d, got:\n%s", size, doc)
	}
}

func TestBuildChannelFields(t *testing.T) {
	base := t.TempDir()

	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)
	data, items, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := string(data)

	if items != 0 {
		t.Fatalf("expected empty channel, got %d items", items)
	}
	for _, want := range []string{
		`xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"`,
		`xmlns:content="http://purl.org/rss/1.0/modules/content/"`,
		`version="2.0"`,
		"<title>The Economist Weekly Edition (Chapters)</title>",
		"<language>en-us</language>",
		"<link>https://user.github.io/repo/feed.xml</link>",
		"<itunes:author>The Economist (Processed)</itunes:author>",
		"<itunes:explicit>no</itunes:explicit>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected feed to contain %q, got:\n%s", want, doc)
		}
	}
}

func TestBuildOrdersDirectoriesDescendingAndFilesAscending(t *testing.T) {
	base := t.TempDir()
	writeSegment(t, base, "Economist_2025-01-10", "02 - Letters.mp3")
	writeSegment(t, base, "Economist_2025-01-10", "01 - World This Week.mp3")
	writeSegment(t, base, "Economist_2025-01-17", "01 - Briefing.mp3")

	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)
	data, _, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := string(data)

	newest := strings.Index(doc, "2025-01-17 - Briefing")
	first := strings.Index(doc, "2025-01-10 - World This Week")
	second := strings.Index(doc, "2025-01-10 - Letters")
	if newest == -1 || first == -1 || second == -1 {
		t.Fatalf("missing expected items:\n%s", doc)
	}
	if !(newest < first && first < second) {
		t.Fatalf("expected newest directory first and files in index order")
	}
}

func TestBuildUnparseableDateTokenFallsBackToNow(t *testing.T) {
	base := t.TempDir()
	writeSegment(t, base, "Economist_undated", "01 - Something.mp3")

	now := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)
	data, _, err := builder.Build(now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !strings.Contains(string(data), "<pubDate>Sun, 02 Mar 2025 09:30:00 GMT</pubDate>") {
		t.Fatalf("expected fallback pubDate, got:\n%s", data)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	base := t.TempDir()
	writeSegment(t, base, "Economist_2025-01-17", "01 - World This Week.mp3")
	writeSegment(t, base, "Economist_2025-01-17", "02 - Letters.mp3")

	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)

	first, _, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, _, err := builder.Build(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("expected byte-identical documents for an unchanged tree")
	}
}

func TestWriteRegeneratesDocument(t *testing.T) {
	base := t.TempDir()
	writeSegment(t, base, "Economist_2025-01-17", "01 - Briefing.mp3")

	// A stale document from an earlier run must be fully replaced.
	if err := os.WriteFile(filepath.Join(base, FileName), []byte("stale"), 0o644); err != nil {
		t.Fatalf("write stale feed: %v", err)
	}

	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)
	items, err := builder.Write(time.Now())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if items != 1 {
		t.Fatalf("expected 1 item, got %d", items)
	}

	data, err := os.ReadFile(filepath.Join(base, FileName))
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Fatalf("expected xml header, got %q", string(data[:20]))
	}
	if strings.Contains(string(data), "stale") {
		t.Fatalf("expected stale content replaced")
	}
}

func TestBuildTitleWithoutSeparatorUsesWholeName(t *testing.T) {
	base := t.TempDir()
	writeSegment(t, base, "Economist_2025-01-17", "bonus.mp3")

	builder := NewBuilder(base, "https://user.github.io/repo", testMetadata(), nil)
	data, _, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !strings.Contains(string(data), "<title>2025-01-17 - bonus</title>") {
		t.Fatalf("expected whole stem as title part, got:\n%s", data)
	}
}
