package record

import "testing"

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Male", "male"},
		{"FEMALE", "female"},
		{"m", "male"},
		{"f", "female"},
		{" Female ", "female"},
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeGender(tt.in); got != tt.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"sex header wins", "Sex: Female\nThe male suspect was seen nearby.", "female"},
		{"first token", "A male subject left the area.", "male"},
		{"female token", "The missing female was 16.", "female"},
		{"nothing", "No descriptors at all.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseGender(tt.text); got != tt.want {
				t.Errorf("ParseGender = %q, want %q", got, tt.want)
			}
		})
	}
}
