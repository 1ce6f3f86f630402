package core

import (
	"testing"
	"time"
)

func TestEventLog_AppendOrderAndFormat(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 14, 7, 9, 0, time.Local)
	log := NewEventLog(func() time.Time { return fixed })

	log.Append("Entered Gate")
	log.Append("Entered Workstation")
	log.Append("Entered Canteen")

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	wantOrder := []string{"Entered Gate", "Entered Workstation", "Entered Canteen"}
	for i, want := range wantOrder {
		if entries[i].Message != want {
			t.Errorf("entry %d = %q, want %q (insertion order)", i, entries[i].Message, want)
		}
	}
	for i, entry := range entries {
		if entry.Time != "14:07:09" {
			t.Errorf("entry %d time = %q, want 14:07:09", i, entry.Time)
		}
		if entry.ID == "" {
			t.Errorf("entry %d has empty id", i)
		}
	}
	if entries[0].ID == entries[1].ID {
		t.Errorf("consecutive entries share an id")
	}
}

func TestEventLog_EntriesReturnsCopy(t *testing.T) {
	log := NewEventLog(nil)
	log.Append("Entered Gate")

	got := log.Entries()
	got[0].Message = "mutated"

	if log.Entries()[0].Message != "Entered Gate" {
		t.Errorf("caller mutation leaked into the log")
	}
}
