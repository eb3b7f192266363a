package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tunesmith/tunesmith/internal/logger"
	"github.com/tunesmith/tunesmith/internal/model"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// failedMarker is written in the score column when no repetition produced a
// usable score.
const failedMarker = "FAILED"

// Options configures a result store.
type Options struct {
	Path      string
	Variables []string
	Repeat    int
	Objective model.Objective
	Logger    *logger.Logger
	// Fresh discards an existing log instead of resuming from it.
	Fresh bool
}

// Best is the winning row of the log under the configured objective.
type Best struct {
	Ordinal    int64
	Assignment model.Assignment
	Score      float64
}

// Store is the append-only CSV result log and the sole record of completed
// evaluations. Every finished outcome becomes exactly one row, appended in
// completion order and flushed immediately, so a crashed or interrupted run
// resumes from whatever reached the file. Rows are never rewritten.
//
// One row per outcome: the evaluation ordinal, one cell per space variable
// (empty when the variable is not on the assignment's path), one cell per
// repetition (score or failure reason), the aggregated score or FAILED, and
// the status. All methods are called from a single goroutine.
type Store struct {
	path      string
	variables []string
	repeat    int
	objective model.Objective
	log       *logger.Logger

	file   *os.File
	writer *csv.Writer

	seen  map[string]int64
	next  int64
	count int64
	best  *Best
}

// Open loads the log at path, or creates it. An existing log is replayed to
// rebuild the set of already-evaluated assignments, tolerating a torn final
// row from a crashed writer.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, tunesmitherrors.NewStoreError("", fmt.Errorf("log path is empty"))
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, tunesmitherrors.NewStoreError(opts.Path, err)
		}
	}

	flags := os.O_CREATE | os.O_RDWR
	if opts.Fresh {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(opts.Path, flags, 0o644)
	if err != nil {
		return nil, tunesmitherrors.NewStoreError(opts.Path, err)
	}

	s := &Store{
		path:      opts.Path,
		variables: append([]string(nil), opts.Variables...),
		repeat:    opts.Repeat,
		objective: opts.Objective,
		log:       opts.Logger,
		file:      file,
		seen:      make(map[string]int64),
		next:      1,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, tunesmitherrors.NewStoreError(opts.Path, err)
	}

	if info.Size() == 0 {
		if err := s.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	} else {
		if err := s.load(); err != nil {
			file.Close()
			return nil, err
		}
	}

	s.writer = csv.NewWriter(file)
	return s, nil
}

func (s *Store) writeHeader() error {
	header := make([]string, 0, len(s.variables)+s.repeat+3)
	header = append(header, "test")
	header = append(header, s.variables...)
	for i := 1; i <= s.repeat; i++ {
		header = append(header, fmt.Sprintf("rep_%d", i))
	}
	header = append(header, "score", "status")

	w := csv.NewWriter(s.file)
	if err := w.Write(header); err != nil {
		return tunesmitherrors.NewStoreError(s.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return tunesmitherrors.NewStoreError(s.path, err)
	}
	return nil
}

// load replays the existing log. The variable columns must match the current
// space; the repetition column count may differ, so rows are parsed from
// both ends (ordinal and variables from the front, score and status from
// the back).
func (s *Store) load() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return tunesmitherrors.NewStoreError(s.path, err)
	}

	r := csv.NewReader(s.file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return tunesmitherrors.NewStoreError(s.path, fmt.Errorf("unreadable log header: %w", err))
	}
	if err := s.checkHeader(header); err != nil {
		return err
	}

	minFields := 1 + len(s.variables) + 2
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A torn tail from a crashed writer; everything before it
			// counts, anything after is unreachable.
			skipped++
			break
		}
		if len(record) < minFields {
			skipped++
			continue
		}

		ordinal, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil || ordinal < 1 {
			skipped++
			continue
		}

		assignment := model.Assignment{}
		for i, name := range s.variables {
			if cell := record[1+i]; cell != "" {
				assignment[name] = cell
			}
		}

		status := record[len(record)-1]
		scoreCell := record[len(record)-2]

		s.seen[assignment.Key()] = ordinal
		s.count++
		if ordinal >= s.next {
			s.next = ordinal + 1
		}

		if status == model.StatusSuccess {
			if score, err := strconv.ParseFloat(scoreCell, 64); err == nil {
				s.consider(ordinal, assignment, score)
			}
		}
	}

	if skipped > 0 {
		s.log.WithFields(map[string]any{"path": s.path, "rows": skipped}).Warn("ignored unreadable result log rows")
	}

	return s.reopenForAppend()
}

// reopenForAppend positions the file for appending and repairs a missing
// trailing newline left by a torn write, so the next row starts clean.
func (s *Store) reopenForAppend() error {
	end, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return tunesmitherrors.NewStoreError(s.path, err)
	}
	if end > 0 {
		buf := make([]byte, 1)
		if _, err := s.file.ReadAt(buf, end-1); err != nil {
			return tunesmitherrors.NewStoreError(s.path, err)
		}
		if buf[0] != '\n' {
			if _, err := s.file.Write([]byte("\n")); err != nil {
				return tunesmitherrors.NewStoreError(s.path, err)
			}
		}
	}
	return nil
}

func (s *Store) checkHeader(header []string) error {
	want := 1 + len(s.variables) + 2
	if len(header) < want || header[0] != "test" {
		return tunesmitherrors.NewStoreError(s.path, fmt.Errorf("existing log has an incompatible header"))
	}
	for i, name := range s.variables {
		if header[1+i] != name {
			return tunesmitherrors.NewStoreError(s.path, fmt.Errorf("existing log was written for different variables (column %q, want %q)", header[1+i], name))
		}
	}
	if header[len(header)-2] != "score" || header[len(header)-1] != "status" {
		return tunesmitherrors.NewStoreError(s.path, fmt.Errorf("existing log has an incompatible header"))
	}
	return nil
}

// consider applies the best-row reduction: a strictly better score wins, an
// equal score keeps the earlier ordinal. The result is independent of the
// order rows arrive in.
func (s *Store) consider(ordinal int64, assignment model.Assignment, score float64) {
	switch {
	case s.best == nil:
		s.best = &Best{Ordinal: ordinal, Assignment: assignment, Score: score}
	case s.objective.Better(score, s.best.Score):
		s.best = &Best{Ordinal: ordinal, Assignment: assignment, Score: score}
	case score == s.best.Score && ordinal < s.best.Ordinal:
		s.best = &Best{Ordinal: ordinal, Assignment: assignment, Score: score}
	}
}

// Append records one completed outcome and flushes it to disk before
// returning. Interrupted outcomes must not be appended.
func (s *Store) Append(out *model.Outcome) error {
	if out.Interrupted {
		return tunesmitherrors.NewStoreError(s.path, fmt.Errorf("refusing to record an interrupted evaluation"))
	}

	record := make([]string, 0, 1+len(s.variables)+s.repeat+2)
	record = append(record, strconv.FormatInt(out.Ordinal, 10))
	for _, name := range s.variables {
		record = append(record, out.Assignment[name])
	}
	for i := 0; i < s.repeat; i++ {
		if i >= len(out.Measurements) {
			record = append(record, "")
			continue
		}
		m := out.Measurements[i]
		if m.Success {
			record = append(record, formatScore(m.Score))
		} else {
			record = append(record, string(m.Reason))
		}
	}
	if out.HasScore() {
		record = append(record, formatScore(*out.Score))
	} else {
		record = append(record, failedMarker)
	}
	record = append(record, out.Status)

	if err := s.writer.Write(record); err != nil {
		return tunesmitherrors.NewStoreError(s.path, err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return tunesmitherrors.NewStoreError(s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return tunesmitherrors.NewStoreError(s.path, err)
	}

	s.seen[out.Assignment.Key()] = out.Ordinal
	s.count++
	if out.Ordinal >= s.next {
		s.next = out.Ordinal + 1
	}
	if out.Status == model.StatusSuccess && out.HasScore() {
		s.consider(out.Ordinal, out.Assignment, *out.Score)
	}
	return nil
}

// Contains reports whether an assignment with this key has a recorded row.
func (s *Store) Contains(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// NextOrdinal returns the ordinal for the next proposed evaluation,
// monotone across resumed runs.
func (s *Store) NextOrdinal() int64 {
	return s.next
}

// Count returns the number of recorded outcomes.
func (s *Store) Count() int64 {
	return s.count
}

// Best returns the winning recorded row, if any succeeded.
func (s *Store) Best() (Best, bool) {
	if s.best == nil {
		return Best{}, false
	}
	return *s.best, true
}

// Path returns the log location.
func (s *Store) Path() string {
	return s.path
}

// Close flushes and closes the log file.
func (s *Store) Close() error {
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// formatScore renders floats with full round-trip precision so the log is
// bit-for-bit reproducible.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
