package record

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// jsonlRecord is the on-disk line format. RecordType discriminates header,
// event, and footer lines; unrelated fields stay empty per line.
type jsonlRecord struct {
	RecordType string `json:"_type"`

	// Header fields.
	ID        string    `json:"id,omitempty"`
	Goal      string    `json:"goal,omitempty"`
	Identity  string    `json:"identity,omitempty"`
	Context   string    `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`

	// Event payload.
	*Event `json:",omitempty"`

	// Footer fields.
	Status     string    `json:"status,omitempty"`
	Result     string    `json:"result,omitempty"`
	Iterations int       `json:"iterations,omitempty"`
	Completed  *bool     `json:"completed,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

const (
	recordTypeHeader = "header"
	recordTypeEvent  = "event"
	recordTypeFooter = "footer"
)

// Writer streams a mission record to disk. Lines are written unbuffered so
// a live viewer tailing the file sees events as they happen.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	seq    uint64
	closed bool
}

// NewWriter creates <id>.jsonl under dir and writes the header line. An
// empty rec.ID gets a generated one.
func NewWriter(dir string, rec *Record) (*Writer, error) {
	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.Status = StatusRunning

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create record dir: %w", err)
	}

	path := filepath.Join(dir, rec.ID+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create record file: %w", err)
	}

	w := &Writer{f: f, path: path}
	header := jsonlRecord{
		RecordType: recordTypeHeader,
		ID:         rec.ID,
		Goal:       rec.Goal,
		Identity:   rec.Identity,
		Context:    rec.Context,
		CreatedAt:  rec.CreatedAt,
	}
	if err := w.writeLine(header); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Path returns the record file location.
func (w *Writer) Path() string { return w.path }

// Append writes one event line, assigning the sequence number and filling
// a zero timestamp.
func (w *Writer) Append(ev Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("record writer is closed")
	}
	w.seq++
	ev.SeqID = w.seq
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return w.writeLine(jsonlRecord{RecordType: recordTypeEvent, Event: &ev})
}

// Close writes the footer line and closes the file.
func (w *Writer) Close(status, result string, iterations int, completed bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	footer := jsonlRecord{
		RecordType: recordTypeFooter,
		Status:     status,
		Result:     result,
		Iterations: iterations,
		Completed:  &completed,
		UpdatedAt:  time.Now(),
	}
	err := w.writeLine(footer)
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// writeLine marshals one JSONL line. Callers hold the lock.
func (w *Writer) writeLine(rec jsonlRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record line: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.f.Write(data); err != nil {
		return fmt.Errorf("failed to write record line: %w", err)
	}
	return nil
}

// Load reads a record file. A missing footer (a mission still running, or
// one that crashed) leaves the status at running.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record: %w", err)
	}
	defer f.Close()

	rec := &Record{Status: StatusRunning}
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			if perr := parseLine(bytes.TrimSpace(line), rec); perr != nil {
				return nil, perr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
	}

	if rec.ID == "" {
		return nil, fmt.Errorf("record %s has no header", path)
	}
	return rec, nil
}

func parseLine(line []byte, rec *Record) error {
	var jr jsonlRecord
	if err := json.Unmarshal(line, &jr); err != nil {
		return fmt.Errorf("malformed record line: %w", err)
	}

	switch jr.RecordType {
	case recordTypeHeader:
		rec.ID = jr.ID
		rec.Goal = jr.Goal
		rec.Identity = jr.Identity
		rec.Context = jr.Context
		rec.CreatedAt = jr.CreatedAt
		rec.UpdatedAt = jr.CreatedAt
	case recordTypeEvent:
		if jr.Event != nil {
			rec.Events = append(rec.Events, *jr.Event)
			rec.UpdatedAt = jr.Event.Timestamp
		}
	case recordTypeFooter:
		rec.Status = jr.Status
		rec.Result = jr.Result
		rec.Iterations = jr.Iterations
		if jr.Completed != nil {
			rec.Completed = *jr.Completed
		}
		rec.UpdatedAt = jr.UpdatedAt
	default:
		return fmt.Errorf("unknown record line type %q", jr.RecordType)
	}
	return nil
}

// List loads every record in dir, newest first. Unreadable files are
// skipped.
func List(dir string) ([]*Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		rec, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
