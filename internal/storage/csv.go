package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/hyperjump/kensho/internal/models"
)

// CSVHeader is the header row of the result log.
var CSVHeader = []string{"Story ID", "Prediction", "Rationale"}

// CSVStore keeps results in a CSV file that is only ever appended to.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store backed by path. The file is created on first append.
// Parent directories are created if they do not exist.
func NewCSVStore(path string) (*CSVStore, error) {
	if path == "" {
		return nil, errors.New("csv store path must be specified")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return &CSVStore{path: path}, nil
}

// Path returns the file the store writes to.
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads every record. A missing file is an empty log. A malformed final record,
// left by an interrupted write, is ignored.
func (s *CSVStore) Load(ctx context.Context) ([]models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	results, _, err := scan(ctx, data)
	return results, err
}

func (s *CSVStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return data, nil
}

// scan parses data and returns the results plus the byte offset just past the last
// intact record. Only the final record may be damaged.
func scan(ctx context.Context, data []byte) ([]models.Result, int64, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var (
		results []models.Result
		valid   int64
		line    int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		var res models.Result
		if err == nil {
			if line == 1 && isHeader(record) {
				valid = r.InputOffset()
				continue
			}
			res, err = parseRecord(record)
		}
		if err != nil {
			if _, next := r.Read(); next == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("invalid result at record %d: %w", line, err)
		}
		results = append(results, res)
		valid = r.InputOffset()
	}
	return results, valid, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff")), CSVHeader[0])
}

func parseRecord(record []string) (models.Result, error) {
	if len(record) != len(CSVHeader) {
		return models.Result{}, fmt.Errorf("expected %d fields, got %d", len(CSVHeader), len(record))
	}
	pred, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil || (pred != models.LabelContradict && pred != models.LabelConsistent) {
		return models.Result{}, fmt.Errorf("invalid prediction %q", record[1])
	}
	return models.Result{StoryID: record[0], Prediction: pred, Rationale: record[2]}, nil
}

// Append writes results in a single write followed by fsync. The header is written
// first when the file is new or empty. A damaged final record is cut off and a
// missing final newline restored before writing. On failure the file is truncated
// back to its previous length so earlier results stay intact.
func (s *CSVStore) Append(ctx context.Context, results []models.Result) error {
	if len(results) == 0 {
		return nil
	}
	if err := validate(results); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	_, size, err := scan(ctx, data)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open results: %w", err)
	}
	defer func() { _ = f.Close() }()

	if size < int64(len(data)) {
		if err := f.Truncate(size); err != nil {
			return fmt.Errorf("failed to drop damaged record: %w", err)
		}
	}

	var buf bytes.Buffer
	if size > 0 && data[size-1] != '\n' {
		buf.WriteByte('\n')
	}
	w := csv.NewWriter(&buf)
	if size == 0 {
		if err := w.Write(CSVHeader); err != nil {
			return err
		}
	}
	for _, res := range results {
		if err := w.Write([]string{res.StoryID, strconv.Itoa(res.Prediction), res.Rationale}); err != nil {
			return fmt.Errorf("failed to encode result %s: %w", res.StoryID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return rollback(f, size, fmt.Errorf("failed to write results: %w", err))
	}
	if err := f.Sync(); err != nil {
		return rollback(f, size, fmt.Errorf("failed to sync results: %w", err))
	}
	return nil
}

func rollback(f *os.File, size int64, cause error) error {
	if err := f.Truncate(size); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to roll back results: %w", err))
	}
	return cause
}

// Get returns the result for storyID or ErrNotFound.
func (s *CSVStore) Get(ctx context.Context, storyID string) (*models.Result, error) {
	results, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].StoryID == storyID {
			return &results[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, storyID)
}

// List returns results in write order. limit <= 0 means no limit.
func (s *CSVStore) List(ctx context.Context, offset, limit int) ([]models.Result, error) {
	results, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return page(results, offset, limit), nil
}

// Count returns the number of persisted results.
func (s *CSVStore) Count(ctx context.Context) (int64, error) {
	results, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(results)), nil
}

// Close is a no-op; the file is opened per append.
func (s *CSVStore) Close() error {
	return nil
}
