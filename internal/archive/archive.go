package archive

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EpisodePrefix names dated episode directories in the live tree.
const EpisodePrefix = "Economist_"

// DirName is the archive location under the base directory. It is excluded
// from the published tree by the generated .gitignore.
const DirName = "Archive"

// Manager applies the retention policy: the live tree keeps the single most
// recent episode directory, everything older moves into the archive.
type Manager struct {
	baseDir    string
	archiveDir string
	logger     *log.Logger
}

// NewManager returns a manager over the given base directory.
func NewManager(baseDir string, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		baseDir:    baseDir,
		archiveDir: filepath.Join(baseDir, DirName),
		logger:     logger,
	}
}

// Dir returns the archive location.
func (m *Manager) Dir() string {
	return m.archiveDir
}

// RetireOldEpisodes relocates every dated episode directory except the most
// recent into the archive, replacing a same-named directory already there.
// Each relocation is independent: one failure is logged and the loop moves
// on. Returns the names that were archived.
func (m *Manager) RetireOldEpisodes() ([]string, error) {
	if err := os.MkdirAll(m.archiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", m.baseDir, err)
	}

	var episodes []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), EpisodePrefix) {
			episodes = append(episodes, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(episodes)))

	if len(episodes) <= 1 {
		return nil, nil
	}

	var archived []string
	for _, name := range episodes[1:] {
		src := filepath.Join(m.baseDir, name)
		dst := filepath.Join(m.archiveDir, name)

		if err := os.RemoveAll(dst); err != nil {
			m.logger.Printf("could not clear archived copy of %s: %v", name, err)
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			m.logger.Printf("could not archive %s: %v", name, err)
			continue
		}

		archived = append(archived, name)
		m.logger.Printf("archived %s", name)
	}

	return archived, nil
}

// StoreOriginal relocates the pre-split source file into the archive under a
// date-stamped name. The original never stays in the live tree.
func (m *Manager) StoreOriginal(path, dateToken string) (string, error) {
	if err := os.MkdirAll(m.archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}

	dest := filepath.Join(m.archiveDir, "original_"+dateToken+".mp3")
	if err := Move(path, dest); err != nil {
		return "", fmt.Errorf("archive original: %w", err)
	}
	return dest, nil
}

// Move renames src to dst, falling back to copy-and-remove when the rename
// fails (typically a cross-filesystem drop location).
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
