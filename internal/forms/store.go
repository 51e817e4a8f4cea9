package forms

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Record provenance values.
const (
	SourceManual      = "manual"
	SourceAIGenerated = "ai-generated"
)

const timestampLayout = "2006-01-02 15:04:05"

// Record is a single persisted question/answer pair. Options capture what the
// page offered when the answer was recorded; they are informational only and
// are always re-validated against the options currently rendered. Unknown
// extra fields in the file are tolerated and dropped on the next rewrite.
type Record struct {
	Answer    string   `json:"answer"`
	Options   []string `json:"options"`
	Source    string   `json:"source"`
	Timestamp string   `json:"timestamp"`
	Original  string   `json:"original_question,omitempty"`
}

// Store is the persistent question-to-answer knowledge base: a single JSON
// document loaded fully into memory and rewritten on every mutation. Single
// process, single writer; there is no locking and no history, a repeated key
// overwrites in place.
type Store struct {
	path    string
	records map[string]*Record
	logger  *zap.Logger
	now     func() time.Time
}

// CandidatePaths returns the locations probed for an existing responses file,
// in precedence order: explicit override, FORM_RESPONSES_PATH, the configured
// default, then the built-in fallbacks.
func CandidatePaths(override, configured string) []string {
	paths := make([]string, 0, 5)
	if override != "" {
		paths = append(paths, override)
	}
	if env := os.Getenv("FORM_RESPONSES_PATH"); env != "" {
		paths = append(paths, env)
	}
	if configured != "" {
		paths = append(paths, configured)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".applypilot", "form_responses.json"))
	}
	return append(paths, "form_responses.json")
}

// OpenStore loads the first existing file from the candidate paths. When none
// exists, an empty file is created at the highest-precedence path. A missing,
// unreadable or malformed file is never fatal: the store degrades to an empty
// in-memory mapping and keeps attempting to persist on each write.
func OpenStore(paths []string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(paths) == 0 {
		paths = CandidatePaths("", "")
	}

	s := &Store{
		records: make(map[string]*Record),
		logger:  logger,
		now:     time.Now,
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		s.path = path
		if len(data) == 0 {
			return s
		}
		if err := json.Unmarshal(data, &s.records); err != nil {
			logger.Warn("responses file is malformed, starting with an empty set",
				zap.String("path", path),
				zap.Error(err),
			)
			s.records = make(map[string]*Record)
			return s
		}
		logger.Info("loaded form responses",
			zap.String("path", path),
			zap.Int("count", len(s.records)),
		)
		return s
	}

	s.path = paths[0]
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("creating responses directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	if err := os.WriteFile(s.path, []byte("{}\n"), 0o644); err != nil {
		logger.Warn("creating empty responses file", zap.String("path", s.path), zap.Error(err))
	} else {
		logger.Info("created empty responses file", zap.String("path", s.path))
	}

	return s
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Len returns the number of stored records.
func (s *Store) Len() int { return len(s.records) }

// Get returns the record stored under the given normalized key.
func (s *Store) Get(key string) (*Record, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

// Keys returns all stored keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Put inserts or overwrites the record for key and rewrites the backing file.
// A failed write is logged, not raised: the in-memory state stays
// authoritative and the next Put tries the disk again.
func (s *Store) Put(key, answer string, options []string, source string) {
	if key == "" {
		return
	}

	s.records[key] = &Record{
		Answer:    answer,
		Options:   options,
		Source:    source,
		Timestamp: s.now().Format(timestampLayout),
	}

	s.logger.Info("stored form response",
		zap.String("question", key),
		zap.String("source", source),
		zap.Int("total", len(s.records)),
	)

	s.save()
}

func (s *Store) save() {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		s.logger.Error("serializing form responses", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		s.logger.Error("saving form responses", zap.String("path", s.path), zap.Error(err))
	}
}
