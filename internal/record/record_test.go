package record

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vinayprograms/mission/internal/mission"
)

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, &Record{
		Goal:     "ship the release",
		Identity: "release-captain",
		Context:  "shared",
	})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	events := []Event{
		{Type: "mission-start"},
		{Type: "worker-reply", Iteration: 1, Content: "done with step one"},
		{Type: "analysis-result", Iteration: 1, Fields: map[string]interface{}{"verdict": "completed"}},
	}
	for _, ev := range events {
		if err := w.Append(ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := w.Close(StatusComplete, "all good", 1, true); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rec, err := Load(w.Path())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if rec.Goal != "ship the release" {
		t.Errorf("goal = %q, want %q", rec.Goal, "ship the release")
	}
	if rec.Identity != "release-captain" {
		t.Errorf("identity = %q", rec.Identity)
	}
	if rec.Status != StatusComplete {
		t.Errorf("status = %q, want %q", rec.Status, StatusComplete)
	}
	if rec.Result != "all good" {
		t.Errorf("result = %q", rec.Result)
	}
	if !rec.Completed {
		t.Error("expected completed record")
	}
	if rec.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", rec.Iterations)
	}
	if len(rec.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(rec.Events))
	}
	if rec.Events[1].Content != "done with step one" {
		t.Errorf("event content = %q", rec.Events[1].Content)
	}
	if verdict := rec.Events[2].Fields["verdict"]; verdict != "completed" {
		t.Errorf("event verdict = %v", verdict)
	}
}

func TestWriterAssignsSequenceNumbers(t *testing.T) {
	w, err := NewWriter(t.TempDir(), &Record{Goal: "g"})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := w.Append(Event{Type: "iteration-start"}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	w.Close(StatusComplete, "", 5, true)

	rec, err := Load(w.Path())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, ev := range rec.Events {
		if ev.SeqID != uint64(i+1) {
			t.Errorf("event %d seq = %d, want %d", i, ev.SeqID, i+1)
		}
		if ev.Timestamp.IsZero() {
			t.Errorf("event %d has zero timestamp", i)
		}
	}
}

func TestLoadWithoutFooter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), &Record{Goal: "interrupted run"})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	w.Append(Event{Type: "mission-start"})
	path := w.Path()
	// Simulate a crash: no footer is ever written.

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Status != StatusRunning {
		t.Errorf("status = %q, want %q", rec.Status, StatusRunning)
	}
	if rec.Goal != "interrupted run" {
		t.Errorf("goal = %q", rec.Goal)
	}
	if len(rec.Events) != 1 {
		t.Errorf("got %d events, want 1", len(rec.Events))
	}
}

func TestAppendAfterCloseFails(t *testing.T) {
	w, err := NewWriter(t.TempDir(), &Record{Goal: "g"})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	w.Close(StatusFailed, "", 0, false)

	if err := w.Append(Event{Type: "worker-reply"}); err == nil {
		t.Error("expected error appending after close")
	}
}

func TestLoadRejectsHeaderlessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jsonl")
	if err := os.WriteFile(path, []byte(`{"_type":"event","type":"worker-reply","seq":1}`+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for record without header")
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	w, err := NewWriter(t.TempDir(), &Record{Goal: "g"})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	w.Append(Event{Type: "mission-start"})
	w.Close(StatusComplete, "", 1, true)

	data, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	padded := strings.ReplaceAll(string(data), "\n", "\n\n")
	if err := os.WriteFile(w.Path(), []byte(padded), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rec, err := Load(w.Path())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rec.Events) != 1 {
		t.Errorf("got %d events, want 1", len(rec.Events))
	}
}

func TestSinkMapsLifecycleEvents(t *testing.T) {
	w, err := NewWriter(t.TempDir(), &Record{Goal: "g"})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	sink := NewSink(w)

	sink.Emit(mission.Event{
		Kind:      mission.EventWorkerReply,
		Iteration: 2,
		Fields:    map[string]interface{}{"content": "patched the config"},
		Timestamp: time.Now(),
	})
	sink.Emit(mission.Event{
		Kind:      mission.EventCollaboratorError,
		Iteration: 3,
		Fields: map[string]interface{}{
			"error":    "provider timeout",
			"failures": 1,
		},
		Timestamp: time.Now(),
	})
	w.Close(StatusFailed, "", 3, false)

	rec, err := Load(w.Path())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rec.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(rec.Events))
	}

	reply := rec.Events[0]
	if reply.Type != string(mission.EventWorkerReply) {
		t.Errorf("type = %q", reply.Type)
	}
	if reply.Content != "patched the config" {
		t.Errorf("content = %q", reply.Content)
	}
	if reply.Iteration != 2 {
		t.Errorf("iteration = %d, want 2", reply.Iteration)
	}

	failure := rec.Events[1]
	if failure.Error != "provider timeout" {
		t.Errorf("error = %q", failure.Error)
	}
	// Fields other than content and error survive as-is. JSON decodes
	// numbers as float64.
	if got := failure.Fields["failures"]; got != float64(1) {
		t.Errorf("failures = %v (%T)", got, got)
	}
	if _, ok := failure.Fields["error"]; ok {
		t.Error("error should be promoted out of fields")
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	dir := t.TempDir()

	for i, goal := range []string{"first", "second", "third"} {
		w, err := NewWriter(dir, &Record{
			Goal:      goal,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("NewWriter failed: %v", err)
		}
		w.Close(StatusComplete, "", 1, true)
	}

	records, err := List(dir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Goal != "third" || records[2].Goal != "first" {
		t.Errorf("unexpected order: %s, %s, %s", records[0].Goal, records[1].Goal, records[2].Goal)
	}
}

func TestListMissingDir(t *testing.T) {
	records, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if records != nil {
		t.Errorf("expected nil, got %d records", len(records))
	}
}
