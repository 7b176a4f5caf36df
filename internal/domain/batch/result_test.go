package batch

import (
	"errors"
	"testing"
)

func TestNewAdded(t *testing.T) {
	r := NewAdded(0, "abc")
	if r.ID() != "abc" || r.Index() != 0 {
		t.Errorf("ID()=%q Index()=%d", r.ID(), r.Index())
	}
	if r.Status() != StatusAdded {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusAdded)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewFailed(t *testing.T) {
	err := errors.New("bad record")
	r := NewFailed(3, "", err)
	if r.Index() != 3 {
		t.Errorf("Index() = %d", r.Index())
	}
	if r.Status() != StatusFailed {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusFailed)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestReport_Record(t *testing.T) {
	rep := NewReport(4)
	rep.Record(NewAdded(0, "a"))
	rep.Record(NewSkipped(1, "a"))
	rep.Record(NewAdded(2, "b"))
	rep.Record(NewFailed(3, "", errors.New("x")))

	if rep.Added != 2 || rep.Skipped != 1 || rep.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", rep.Added, rep.Skipped, rep.Failed)
	}
	if len(rep.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(rep.Items))
	}
	for i, it := range rep.Items {
		if it.Index() != i {
			t.Errorf("item %d has index %d", i, it.Index())
		}
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusAdded != "added" || StatusSkipped != "skipped" || StatusFailed != "failed" {
		t.Errorf("unexpected status values: %q %q %q", StatusAdded, StatusSkipped, StatusFailed)
	}
}
