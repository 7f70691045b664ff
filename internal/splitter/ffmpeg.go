package splitter

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// commandContext is swapped by tests to avoid spawning a real ffmpeg.
var commandContext = exec.CommandContext

// FFmpeg extracts segments through the ffmpeg binary as a lossless stream
// copy.
type FFmpeg struct {
	// Binary overrides the ffmpeg executable name when non-empty.
	Binary string
}

// Extract copies the given time range of source into dest. The seek stays on
// the output side of -i: slower, but frame-exact at chapter boundaries.
func (f FFmpeg) Extract(ctx context.Context, source string, startSeconds, durationSeconds float64, dest string) error {
	binary := f.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-ss", formatSeconds(startSeconds),
		"-t", formatSeconds(durationSeconds),
		"-acodec", "copy",
		"-y", dest,
	}

	cmd := commandContext(ctx, binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg copy: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
