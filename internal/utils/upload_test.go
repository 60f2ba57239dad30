package utils

import (
	"strings"
	"testing"
	"time"
)

func TestAllowedUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{name: "pdf allowed", filename: "essay.pdf", want: true},
		{name: "docx allowed", filename: "report.docx", want: true},
		{name: "zip allowed", filename: "project.zip", want: true},
		{name: "uppercase extension allowed", filename: "PHOTO.JPG", want: true},
		{name: "executable rejected", filename: "malware.exe", want: false},
		{name: "shell script rejected", filename: "run.sh", want: false},
		{name: "no extension rejected", filename: "README", want: false},
		{name: "trailing dot rejected", filename: "notes.", want: false},
		{name: "double extension uses last", filename: "archive.tar.gz", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedUpload(tt.filename); got != tt.want {
				t.Errorf("AllowedUpload(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestStoredFilename(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 5, 0, time.UTC)

	got := StoredFilename("my report.pdf", now)
	want := "20250310_143005_my_report.pdf"
	if got != want {
		t.Errorf("StoredFilename() = %q, want %q", got, want)
	}

	// Path components must not survive into the stored name.
	got = StoredFilename("../../etc/passwd.txt", now)
	if strings.Contains(got, "/") || strings.Contains(got, "..") {
		t.Errorf("StoredFilename() leaked path components: %q", got)
	}
}

func TestRoomName(t *testing.T) {
	name := RoomName("CS101")
	if !strings.HasPrefix(name, "CS101") {
		t.Errorf("RoomName() = %q, want CS101 prefix", name)
	}
	if len(name) != len("CS101")+6 {
		t.Errorf("RoomName() = %q, want 6-char suffix", name)
	}
	if name == RoomName("CS101") {
		t.Error("RoomName() should vary between calls")
	}
}
