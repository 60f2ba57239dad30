package models

import (
	"testing"
	"time"
)

func TestLectureRoomSessionTransitions(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	room := &LectureRoom{}
	if room.IsActive {
		t.Fatal("new room should not be active")
	}

	room.StartSession(start)
	if !room.IsActive {
		t.Error("room should be active after start")
	}
	if room.ActualStart == nil || !room.ActualStart.Equal(start) {
		t.Errorf("ActualStart = %v, want %v", room.ActualStart, start)
	}

	room.EndSession(end)
	if room.IsActive {
		t.Error("room should not be active after end")
	}
	if room.ActualEnd == nil || !room.ActualEnd.Equal(end) {
		t.Errorf("ActualEnd = %v, want %v", room.ActualEnd, end)
	}

	// Re-opening an ended room is allowed.
	restart := end.Add(time.Hour)
	room.StartSession(restart)
	if !room.IsActive {
		t.Error("room should be active after restart")
	}
	if room.ActualStart == nil || !room.ActualStart.Equal(restart) {
		t.Errorf("ActualStart after restart = %v, want %v", room.ActualStart, restart)
	}
}

func TestLectureRoomMeetingURL(t *testing.T) {
	room := &LectureRoom{RoomName: "CS101a1b2c3"}
	got := room.MeetingURL("https://meet.jit.si")
	want := "https://meet.jit.si/CS101a1b2c3"
	if got != want {
		t.Errorf("MeetingURL() = %q, want %q", got, want)
	}
}

func TestSessionLogMarkLeft(t *testing.T) {
	joined := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		leftAt   time.Time
		wantMins int
	}{
		{name: "whole minutes", leftAt: joined.Add(45 * time.Minute), wantMins: 45},
		{name: "partial minute truncates", leftAt: joined.Add(10*time.Minute + 59*time.Second), wantMins: 10},
		{name: "under a minute is zero", leftAt: joined.Add(30 * time.Second), wantMins: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logEntry := &LectureSessionLog{JoinedAt: joined}
			if !logEntry.IsOpen() {
				t.Fatal("log without LeftAt should be open")
			}
			logEntry.MarkLeft(tt.leftAt)
			if logEntry.IsOpen() {
				t.Error("log should be closed after MarkLeft")
			}
			if logEntry.DurationMinutes == nil || *logEntry.DurationMinutes != tt.wantMins {
				t.Errorf("DurationMinutes = %v, want %d", logEntry.DurationMinutes, tt.wantMins)
			}
		})
	}
}
