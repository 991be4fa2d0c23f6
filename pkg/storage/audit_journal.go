package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/events"
	"github.com/google/uuid"
)

// AuditJournal is the append-only change history of a board: one JSON entry
// per line in audit.jsonl, each carrying the hash of the entry before it.
// Unreadable lines are skipped by queries and reported by Verify.
type AuditJournal struct {
	mu   sync.Mutex
	dir  string
	path string
	head string
	now  func() time.Time
}

type JournalOption func(*AuditJournal)

// WithJournalClock stamps entries that arrive without a timestamp.
func WithJournalClock(now func() time.Time) JournalOption {
	return func(j *AuditJournal) { j.now = now }
}

// OpenAuditJournal opens the journal in dir and resumes its chain. A missing
// file is an empty journal; the directory is created on first append.
func OpenAuditJournal(dir string, opts ...JournalOption) (*AuditJournal, error) {
	j := &AuditJournal{
		dir:  dir,
		path: filepath.Join(dir, AuditFile),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	err := j.scan(func(_ int, e *events.BaseEvent, _ error) {
		if e != nil {
			j.head = e.Hash
		}
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// Append stamps, chains and writes one entry.
func (j *AuditJournal) Append(event *events.BaseEvent) (err error) {
	if event == nil || strings.TrimSpace(event.Type) == "" {
		return errors.New("audit entry needs a type")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = j.now()
	}
	event.PrevHash = j.head
	event.Hash = event.CalculateHash()

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	if err := os.MkdirAll(j.dir, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit journal: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close audit journal: %w", cerr)
		}
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync audit journal: %w", err)
	}

	j.head = event.Hash
	return nil
}

// Query returns the readable entries matching f, oldest first.
func (j *AuditJournal) Query(f events.Filter) ([]*events.BaseEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []*events.BaseEvent
	err := j.scan(func(_ int, e *events.BaseEvent, _ error) {
		if e != nil && f.Matches(e) {
			out = append(out, e)
		}
	})
	return out, err
}

// Verify walks the chain and reports unreadable lines, entries that do not
// link to their predecessor, and entries whose contents no longer match
// their hash.
func (j *AuditJournal) Verify() ([]events.Violation, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var (
		violations []events.Violation
		prev       string
	)
	err := j.scan(func(line int, e *events.BaseEvent, decodeErr error) {
		if e == nil {
			violations = append(violations, events.Violation{
				Line:   line,
				Reason: fmt.Sprintf("unreadable entry (%v)", decodeErr),
			})
			return
		}

		v := events.Violation{
			Line:    line,
			EventID: e.ID,
			Type:    e.Type,
			Subject: subject(e),
		}
		if e.PrevHash != prev {
			v.Reason = "does not follow the previous entry"
			violations = append(violations, v)
		}
		if e.Hash != e.CalculateHash() {
			v.Reason = "contents changed after recording"
			violations = append(violations, v)
		}
		prev = e.Hash
	})
	return violations, err
}

// subject names what an entry is about, e.g. "employee e-1".
func subject(e *events.BaseEvent) string {
	kind := e.AggregateType_
	if kind == events.AggregateTypeCenter {
		kind = "center"
	}
	if e.AggregateID_ == "" {
		return kind
	}
	return kind + " " + e.AggregateID_
}

// scan decodes the journal line by line. visit gets a nil entry and the
// decode error for lines that are not valid entries. The caller holds mu
// or owns the journal exclusively.
func (j *AuditJournal) scan(visit func(line int, e *events.BaseEvent, err error)) error {
	f, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open audit journal: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := bufio.NewReader(f)
	for n := 1; ; n++ {
		raw, readErr := r.ReadBytes('\n')
		if trimmed := strings.TrimSpace(string(raw)); trimmed != "" {
			var e events.BaseEvent
			if err := json.Unmarshal([]byte(trimmed), &e); err != nil {
				visit(n, nil, err)
			} else {
				visit(n, &e, nil)
			}
		}
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read audit journal: %w", readErr)
		}
	}
}
