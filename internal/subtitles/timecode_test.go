package subtitles

import "testing"

func TestFromSecondsRoundsToMillisecond(t *testing.T) {
	tests := []struct {
		seconds float64
		want    Timecode
	}{
		{0, 0},
		{2.15, 2150},
		{1.0006, 1001},
		{4.0999999, 4100},
		{3661.25, 3661250},
		{2.21666, 2217},
	}
	for _, tc := range tests {
		if got := FromSeconds(tc.seconds); got != tc.want {
			t.Errorf("FromSeconds(%v) = %d, want %d", tc.seconds, got, tc.want)
		}
	}
}

func TestTimecodeString(t *testing.T) {
	tests := []struct {
		in   Timecode
		want string
	}{
		{0, "00:00:00,000"},
		{1240, "00:00:01,240"},
		{3_723_004, "01:02:03,004"},
		{-5, "00:00:00,000"},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Timecode(%d).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		in      string
		want    Timecode
		wantErr bool
	}{
		{"00:00:01,240", 1240, false},
		{"00:00:01.240", 1240, false},
		{" 01:02:03,004 ", 3_723_004, false},
		{"00:00:02,5", 2500, false},
		{"00:00:02", 2000, false},
		{"00:61:00,000", 0, true},
		{"1:2", 0, true},
		{"aa:bb:cc,ddd", 0, true},
		{"00:00:01,2345", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseTimecode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimecode(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimecode(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimecode(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTimecodeRoundTrip(t *testing.T) {
	for _, tc := range []Timecode{0, 1, 999, 1000, 59_999, 3_599_999, 36_000_000} {
		parsed, err := ParseTimecode(tc.String())
		if err != nil {
			t.Fatalf("ParseTimecode(%q): %v", tc.String(), err)
		}
		if parsed != tc {
			t.Fatalf("round trip %d -> %q -> %d", tc, tc.String(), parsed)
		}
	}
}

func TestComponents(t *testing.T) {
	h, m, s, ms := Timecode(3_723_004).Components()
	if h != 1 || m != 2 || s != 3 || ms != 4 {
		t.Fatalf("Components = %d %d %d %d", h, m, s, ms)
	}
	if got := Timecode(1500).Seconds(); got != 1.5 {
		t.Fatalf("Seconds = %v", got)
	}
}
