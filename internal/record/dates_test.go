package record

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"September 8, 2025", "2025-09-08"},
		{"Sep 8, 2025", "2025-09-08"},
		{"9/8/2025", "2025-09-08"},
		{"9-8-2025", "2025-09-08"},
		{"9/8/25", "2025-09-08"},
		{"2025-09-08", "2025-09-08"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDateToISOUTC(t *testing.T) {
	if got := ParseDateToISOUTC("September 8, 2025"); got != "2025-09-08T00:00:00Z" {
		t.Errorf("ParseDateToISOUTC = %q, want 2025-09-08T00:00:00Z", got)
	}
	if got := ParseDateToISOUTC("garbage"); got != "" {
		t.Errorf("ParseDateToISOUTC(garbage) = %q, want empty", got)
	}
}

func TestExtractDateISO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"last seen September 8, 2025 near the river", "2025-09-08T00:00:00Z"},
		{"disappeared 9/8/2025 at night", "2025-09-08T00:00:00Z"},
		// missing comma gets one normalized retry
		{"went missing September 8 2025", "2025-09-08T00:00:00Z"},
		{"no dates here", ""},
	}
	for _, tt := range tests {
		if got := ExtractDateISO(tt.in); got != tt.want {
			t.Errorf("ExtractDateISO(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLastSeenTS(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"ncmec label", "Missing Since: September 8, 2025\nMissing From: Richmond, VA", "2025-09-08"},
		{"charley slash", "Missing Since 9/8/2025\nDetails of Disappearance", "2025-09-08"},
		{"namus label", "Date Last Seen: 09/08/2025", "2025-09-08"},
		{"generic", "She was last seen September 8, 2025 walking home.", "2025-09-08"},
		{"nothing", "No temporal information at all.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLastSeenTS(tt.text); got != tt.want {
				t.Errorf("ParseLastSeenTS = %q, want %q", got, tt.want)
			}
		})
	}
}
