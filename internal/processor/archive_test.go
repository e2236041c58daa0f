package processor

import (
	"strings"
	"testing"
)

func TestArchiveMarkDone(t *testing.T) {
	a := NewArchive(t.TempDir())

	path, err := a.SaveRaw(EndOfCallType, []byte(`{"type": "end-of-call-report"}`))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := a.ListRaw(EndOfCallType)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 1 {
		t.Fatalf("raw files = %d, want 1", len(raw))
	}

	done, err := a.MarkDone(path)
	if err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if !strings.HasSuffix(done, ".done.json") {
		t.Errorf("done path = %q", done)
	}

	raw, err = a.ListRaw(EndOfCallType)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 0 {
		t.Errorf("done files still listed: %v", raw)
	}

	// marking twice is a caller bug, not a silent rename
	if _, err := a.MarkDone(done); err == nil {
		t.Error("expected error marking a done file")
	}
}
