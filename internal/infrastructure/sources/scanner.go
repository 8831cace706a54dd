// Package sources tracks the freshness of the cached data drops the feature
// pipeline reads.  A source counts as active when its file exists and was
// modified within the configured staleness window; the dashboard surfaces the
// active count as the sources KPI.
package sources

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
)

// knownSources maps the display name of each upstream feed to the file its
// collector drops under the data directory.
var knownSources = map[string]string{
	"GDELT":      "gdelt_events.csv",
	"ACLED":      "acled_events.csv",
	"UCDP":       "ucdp_conflicts.csv",
	"World Bank": "worldbank_indicators.csv",
	"NewsAPI":    "headlines_cache.json",
}

// Status reports one source's freshness.
type Status struct {
	Name        string    `json:"name"`
	File        string    `json:"file"`
	Active      bool      `json:"active"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}

// Scanner watches the data directory and answers freshness queries from an
// in-memory table, so the KPI path never touches the filesystem.
type Scanner struct {
	dataDir    string
	staleAfter time.Duration
	logger     logging.Logger

	mu       sync.RWMutex
	modTimes map[string]time.Time

	watcher *fsnotify.Watcher
	now     func() time.Time
}

// NewScanner builds the scanner and performs the initial directory scan.  A
// missing data directory is not an error: every source simply reports
// inactive until the collectors create it.
func NewScanner(cfg config.SourcesConfig, logger logging.Logger) *Scanner {
	s := &Scanner{
		dataDir:    cfg.DataDir,
		staleAfter: cfg.StaleAfter,
		logger:     logger.Named("sources"),
		modTimes:   make(map[string]time.Time),
		now:        time.Now,
	}
	s.Rescan()
	return s
}

// Watch starts an fsnotify loop that keeps the mtime table current between
// rescans.  It returns immediately; the loop stops when ctx is cancelled.
func (s *Scanner) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(s.dataDir); err != nil {
		w.Close()
		return err
	}
	s.watcher = w

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					s.noteFile(filepath.Base(ev.Name))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("source watcher error", logging.Err(err))
			}
		}
	}()
	return nil
}

// Rescan stats every known source file and refreshes the mtime table.  The
// refresh scheduler calls this once per cycle as a backstop for missed
// watcher events.
func (s *Scanner) Rescan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, file := range knownSources {
		info, err := os.Stat(filepath.Join(s.dataDir, file))
		if err != nil {
			delete(s.modTimes, file)
			continue
		}
		s.modTimes[file] = info.ModTime()
	}
}

func (s *Scanner) noteFile(base string) {
	for _, file := range knownSources {
		if file == base {
			s.mu.Lock()
			s.modTimes[file] = s.now()
			s.mu.Unlock()
			return
		}
	}
}

// Statuses returns every known source's freshness, sorted by name.
func (s *Scanner) Statuses() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-s.staleAfter)
	out := make([]Status, 0, len(knownSources))
	for name, file := range knownSources {
		st := Status{Name: name, File: file}
		if mt, ok := s.modTimes[file]; ok {
			st.LastUpdated = mt
			st.Active = mt.After(cutoff)
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ActiveCount returns how many sources are currently fresh.
func (s *Scanner) ActiveCount() int {
	n := 0
	for _, st := range s.Statuses() {
		if st.Active {
			n++
		}
	}
	return n
}

// Total returns the number of known sources.
func (s *Scanner) Total() int {
	return len(knownSources)
}
