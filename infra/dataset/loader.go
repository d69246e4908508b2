// Package dataset loads per-vehicle score records from CSV files.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kilianp07/fleethealth/core/fleetstats"
	"github.com/kilianp07/fleethealth/core/logger"
)

// Config locates the dataset.
type Config struct {
	// Root is the directory searched for CSV files.
	Root string `json:"root"`
	// Pattern is a doublestar glob relative to Root.
	Pattern string `json:"pattern"`
	// ReloadIntervalSeconds reloads the files periodically; zero disables it.
	ReloadIntervalSeconds int `json:"reload_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Root == "" {
		c.Root = "datasets"
	}
	if c.Pattern == "" {
		c.Pattern = "**/*.csv"
	}
}

// Validate checks the glob pattern.
func (c Config) Validate() error {
	if !doublestar.ValidatePattern(c.Pattern) {
		return fmt.Errorf("invalid dataset pattern %q", c.Pattern)
	}
	if c.ReloadIntervalSeconds < 0 {
		return fmt.Errorf("reload_interval_seconds must be positive")
	}
	return nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Discover returns the files under fsys matching pattern, sorted.
func Discover(fsys fs.FS, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Load reads every file matching the pattern. The first row seen for a
// vehicle id wins. Unreadable files are logged and skipped.
func Load(fsys fs.FS, pattern string, log logger.Logger) (fleetstats.Snapshot, error) {
	log = logger.OrNop(log)
	files, err := Discover(fsys, pattern)
	if err != nil {
		return fleetstats.Snapshot{}, err
	}
	snap := fleetstats.Snapshot{Records: []fleetstats.Record{}}
	seen := map[string]bool{}
	for _, name := range files {
		size, err := readFile(fsys, name, seen, &snap.Records)
		if err != nil {
			log.Warnf("skipping %s: %v", name, err)
			continue
		}
		snap.Files++
		snap.TotalBytes += size
	}
	return snap, nil
}

// LoadDir loads the files of cfg from disk.
func LoadDir(cfg Config, log logger.Logger) (fleetstats.Snapshot, error) {
	if _, err := os.Stat(cfg.Root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.OrNop(log).Warnf("dataset root %s does not exist", cfg.Root)
			return fleetstats.Snapshot{Records: []fleetstats.Record{}}, nil
		}
		return fleetstats.Snapshot{}, err
	}
	return Load(os.DirFS(cfg.Root), cfg.Pattern, log)
}

func readFile(fsys fs.FS, name string, seen map[string]bool, out *[]fleetstats.Record) (int64, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return 0, err
		}
	}
	rows, err := decode(br)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		rec, ok := ParseRow(row)
		if !ok || seen[rec.CarID] {
			continue
		}
		seen[rec.CarID] = true
		*out = append(*out, rec)
	}
	return info.Size(), nil
}

func decode(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[strings.TrimSpace(col)] = rec[i]
			}
		}
		rows = append(rows, row)
	}
}
