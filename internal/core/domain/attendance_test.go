package domain_test

import (
	"testing"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

func roster() []domain.Enrollment {
	return []domain.Enrollment{
		{ID: "a", ChildName: "Ada"},
		{ID: "b", ChildName: "Ben"},
		{ID: "c", ChildName: "Cleo"},
	}
}

func TestSheet_StartsAllPresent(t *testing.T) {
	s := domain.NewSheet(roster())
	for _, e := range roster() {
		if !s.IsPresent(e.ID) {
			t.Errorf("expected %s present", e.ID)
		}
	}
	if got := s.Absentees(); len(got) != 0 {
		t.Errorf("expected no absentees, got %d", len(got))
	}
	if s.Len() != 3 {
		t.Errorf("expected length 3, got %d", s.Len())
	}
}

func TestSheet_Toggle(t *testing.T) {
	tests := []struct {
		name    string
		toggles []string
		absent  []string
	}{
		{name: "single_toggle_marks_absent", toggles: []string{"b"}, absent: []string{"b"}},
		{name: "double_toggle_restores_present", toggles: []string{"b", "b"}, absent: nil},
		{name: "absentees_keep_roster_order", toggles: []string{"c", "a"}, absent: []string{"a", "c"}},
		{name: "unknown_id_is_ignored", toggles: []string{"zzz"}, absent: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NewSheet(roster())
			for _, id := range tt.toggles {
				s.Toggle(id)
			}
			got := s.Absentees()
			if len(got) != len(tt.absent) {
				t.Fatalf("expected %d absentees, got %d", len(tt.absent), len(got))
			}
			for i, id := range tt.absent {
				if got[i].ID != id {
					t.Errorf("absentee %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestSheet_ToggleUnknownReportsFalse(t *testing.T) {
	s := domain.NewSheet(roster())
	if s.Toggle("missing") {
		t.Error("expected false for an id not on the roster")
	}
	if !s.Toggle("a") {
		t.Error("expected true for a roster id")
	}
}

func TestSheet_MarkAbsentIsIdempotent(t *testing.T) {
	s := domain.NewSheet(roster())
	s.MarkAbsent("a")
	s.MarkAbsent("a")
	if s.IsPresent("a") {
		t.Error("expected a absent after marking twice")
	}
	if s.MarkAbsent("missing") {
		t.Error("expected false for an id not on the roster")
	}
}
