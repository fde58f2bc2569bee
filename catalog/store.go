package catalog

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"slices"

	"github.com/goccy/go-json"

	"github.com/poiesic/assessor/core"
)

// DefaultRecordsKey is the top-level JSON key holding the record array.
const DefaultRecordsKey = "assessments"

// Store is an immutable, ordered collection of assessments.
// It is safe for concurrent use; nothing mutates it after construction.
type Store struct {
	records     []*core.Assessment
	byURL       map[string]*core.Assessment
	quarantined int
	source      string
	loadErr     error
}

// Option configures catalog loading.
type Option func(*loadOptions)

type loadOptions struct {
	recordsKey string
	logger     *slog.Logger
}

// WithRecordsKey overrides the top-level key holding the record array.
// Default is "assessments".
func WithRecordsKey(key string) Option {
	return func(o *loadOptions) {
		if key != "" {
			o.recordsKey = key
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// New creates a store from in-memory records, keeping their order.
// Records are not validated; callers own their correctness.
func New(records []*core.Assessment) *Store {
	s := &Store{
		records: slices.Clone(records),
		byURL:   make(map[string]*core.Assessment, len(records)),
		source:  "memory",
	}
	for _, r := range s.records {
		if _, exists := s.byURL[r.URL]; !exists {
			s.byURL[r.URL] = r
		}
	}
	return s
}

// Load reads and validates the catalog file at path.
func Load(path string, opts ...Option) (*Store, error) {
	options := &loadOptions{
		recordsKey: DefaultRecordsKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger.With("component", "catalog", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDataUnavailable, err)
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}

	raw, ok := document[options.recordsKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q key", core.ErrParse, options.recordsKey)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %q is not an array: %w", core.ErrParse, options.recordsKey, err)
	}

	s := &Store{
		records: make([]*core.Assessment, 0, len(entries)),
		byURL:   make(map[string]*core.Assessment, len(entries)),
		source:  path,
	}

	for i, entry := range entries {
		record, err := decodeRecord(entry)
		if err != nil {
			s.quarantined++
			logger.Warn("quarantined catalog entry", "index", i, "err", err)
			continue
		}
		if _, dup := s.byURL[record.URL]; dup {
			s.quarantined++
			logger.Warn("quarantined duplicate catalog entry", "index", i, "url", record.URL)
			continue
		}
		s.records = append(s.records, record)
		s.byURL[record.URL] = record
	}

	logger.Info("loaded catalog", "records", len(s.records), "quarantined", s.quarantined)
	return s, nil
}

// LoadOrEmpty loads the catalog, degrading to an empty store on any error.
// The error stays available through Err.
func LoadOrEmpty(path string, opts ...Option) *Store {
	s, err := Load(path, opts...)
	if err == nil {
		return s
	}

	options := &loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	options.logger.Error("catalog unavailable, serving an empty catalog", "path", path, "err", err)

	return &Store{
		byURL:   map[string]*core.Assessment{},
		source:  path,
		loadErr: err,
	}
}

// decodeRecord strictly decodes and validates one catalog entry.
func decodeRecord(entry json.RawMessage) (*core.Assessment, error) {
	var fields struct {
		URL             *string   `json:"url"`
		AdaptiveSupport *string   `json:"adaptive_support"`
		Description     *string   `json:"description"`
		Duration        *int      `json:"duration"`
		RemoteSupport   *string   `json:"remote_support"`
		TestType        *[]string `json:"test_type"`
	}
	if err := json.Unmarshal(entry, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidAssessment, err)
	}

	var missing []string
	if fields.URL == nil {
		missing = append(missing, "url")
	}
	if fields.AdaptiveSupport == nil {
		missing = append(missing, "adaptive_support")
	}
	if fields.Description == nil {
		missing = append(missing, "description")
	}
	if fields.Duration == nil {
		missing = append(missing, "duration")
	}
	if fields.RemoteSupport == nil {
		missing = append(missing, "remote_support")
	}
	if fields.TestType == nil {
		missing = append(missing, "test_type")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %v", core.ErrInvalidAssessment, missing)
	}

	record := &core.Assessment{
		URL:             *fields.URL,
		AdaptiveSupport: core.Support(*fields.AdaptiveSupport),
		Description:     *fields.Description,
		Duration:        *fields.Duration,
		RemoteSupport:   core.Support(*fields.RemoteSupport),
		TestType:        *fields.TestType,
	}
	if err := core.ValidateAssessment(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns the records in catalog order.
// The slice is a copy; the records themselves are shared and must not be modified.
func (s *Store) Records() []*core.Assessment {
	return slices.Clone(s.records)
}

// All iterates over records in catalog order, yielding each record's position.
func (s *Store) All() iter.Seq2[int, *core.Assessment] {
	return func(yield func(int, *core.Assessment) bool) {
		for i, r := range s.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Lookup finds a record by URL.
func (s *Store) Lookup(url string) (*core.Assessment, bool) {
	r, ok := s.byURL[url]
	return r, ok
}

// Quarantined returns the number of entries skipped during load.
func (s *Store) Quarantined() int {
	return s.quarantined
}

// Source returns the file path the store was loaded from, or "memory".
func (s *Store) Source() string {
	return s.source
}

// Err returns the load error when the store is running degraded.
func (s *Store) Err() error {
	return s.loadErr
}

// Degraded reports whether the catalog failed to load.
func (s *Store) Degraded() bool {
	return s.loadErr != nil
}

// IsDataError reports whether err is one of the recoverable catalog errors.
func IsDataError(err error) bool {
	return errors.Is(err, core.ErrDataUnavailable) || errors.Is(err, core.ErrParse)
}
