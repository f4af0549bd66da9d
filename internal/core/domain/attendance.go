package domain

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusFlagged AttendanceStatus = "Flagged"
)

// AttendanceKind separates the daily roll from incident reports so that both
// can exist for the same child on the same day.
type AttendanceKind string

const (
	KindRoll   AttendanceKind = "roll"
	KindReport AttendanceKind = "report"
)

// DateLayout is the calendar day format used for attendance and notices.
const DateLayout = "2006-01-02"

type AttendanceRecord struct {
	ID           string           `json:"id"`
	EnrollmentID string           `json:"enrollment_id"`
	ChildName    string           `json:"child_name"`
	ParentName   string           `json:"parent_name"`
	Program      string           `json:"program"`
	Status       AttendanceStatus `json:"status"`
	Kind         AttendanceKind   `json:"kind"`
	Date         string           `json:"date"`
	MarkedBy     string           `json:"marked_by"`
	ReportReason string           `json:"report_reason,omitempty"`
	Reported     bool             `json:"reported"`
	Timestamp    time.Time        `json:"timestamp"`
}

// Sheet is the educator's present/absent state for one roster load.
// Every child starts present.
type Sheet struct {
	roster  []Enrollment
	present map[string]bool
}

func NewSheet(roster []Enrollment) *Sheet {
	s := &Sheet{
		roster:  roster,
		present: make(map[string]bool, len(roster)),
	}
	for _, e := range roster {
		s.present[e.ID] = true
	}
	return s
}

// Toggle flips the flag for id and returns false if id is not on the roster.
func (s *Sheet) Toggle(id string) bool {
	flag, ok := s.present[id]
	if !ok {
		return false
	}
	s.present[id] = !flag
	return true
}

// MarkAbsent sets id absent whatever its current flag. It returns false if
// id is not on the roster.
func (s *Sheet) MarkAbsent(id string) bool {
	if _, ok := s.present[id]; !ok {
		return false
	}
	s.present[id] = false
	return true
}

func (s *Sheet) IsPresent(id string) bool {
	return s.present[id]
}

// Absentees returns the roster entries marked absent, in roster order.
func (s *Sheet) Absentees() []Enrollment {
	var out []Enrollment
	for _, e := range s.roster {
		if !s.present[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

func (s *Sheet) Len() int { return len(s.roster) }
