package models

import (
	"testing"
	"time"
)

func TestSubmissionIsLate(t *testing.T) {
	due := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name        string
		dueDate     *time.Time
		submittedAt time.Time
		want        bool
	}{
		{
			name:        "before due date is on time",
			dueDate:     &due,
			submittedAt: due.Add(-time.Hour),
			want:        false,
		},
		{
			name:        "exactly at due date is on time",
			dueDate:     &due,
			submittedAt: due,
			want:        false,
		},
		{
			name:        "after due date is late",
			dueDate:     &due,
			submittedAt: due.Add(time.Minute),
			want:        true,
		},
		{
			name:        "no due date is never late",
			dueDate:     nil,
			submittedAt: due.AddDate(1, 0, 0),
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Assignment{DueDate: tt.dueDate}
			s := &Submission{SubmittedAt: tt.submittedAt}
			if got := s.IsLate(a); got != tt.want {
				t.Errorf("IsLate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmissionIsLateNilAssignment(t *testing.T) {
	s := &Submission{SubmittedAt: time.Now()}
	if s.IsLate(nil) {
		t.Error("IsLate(nil) should be false")
	}
}

func TestGradePercentage(t *testing.T) {
	tests := []struct {
		name      string
		points    float64
		maxPoints int
		want      float64
	}{
		{name: "full marks", points: 100, maxPoints: 100, want: 100},
		{name: "half marks", points: 25, maxPoints: 50, want: 50},
		{name: "zero points", points: 0, maxPoints: 100, want: 0},
		{name: "zero max points does not divide by zero", points: 45, maxPoints: 0, want: 0},
		{name: "negative max points treated as zero", points: 10, maxPoints: -5, want: 0},
		{name: "over max is above 100", points: 110, maxPoints: 100, want: 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Grade{PointsEarned: tt.points}
			if got := g.Percentage(tt.maxPoints); got != tt.want {
				t.Errorf("Percentage(%d) = %v, want %v", tt.maxPoints, got, tt.want)
			}
		})
	}
}
