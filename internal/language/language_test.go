package language

import "testing"

func TestTaskLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"eng", "eng", true},
		{"EN", "eng", true},
		{"English", "eng", true},
		{"fre", "fra", true},
		{"ger", "deu", true},
		{"zh", "cmn", true},
		{"chi", "cmn", true},
		{"dut", "nld", true},
		{"tur", "tur", true},
		{"xy", "", false},
		{"e1g", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := TaskLanguage(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("TaskLanguage(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"":    "Unknown",
		"en":  "English",
		"deu": "German",
		"cmn": "Mandarin Chinese",
		"tur": "TUR",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}
