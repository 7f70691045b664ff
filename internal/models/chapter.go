package models

// Chapter describes one embedded chapter marker, offsets in seconds.
// Instances are produced in the order the frames are stored in the tag and
// are not modified after extraction.
type Chapter struct {
	StartTime float64
	Duration  float64
	Title     string
}

// SegmentInfo carries the per-file facts the feed needs about a segment.
type SegmentInfo struct {
	DurationSeconds *float64
	FilesizeBytes   int64
}
