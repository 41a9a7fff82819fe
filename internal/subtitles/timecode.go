package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timecode is a subtitle time in whole milliseconds.
type Timecode int64

// FromSeconds converts seconds to a Timecode, rounding to the nearest millisecond.
func FromSeconds(seconds float64) Timecode {
	return Timecode(math.Round(seconds * 1000))
}

// Seconds returns the timecode as fractional seconds.
func (t Timecode) Seconds() float64 {
	return float64(t) / 1000
}

// Duration returns the timecode as a time.Duration.
func (t Timecode) Duration() time.Duration {
	return time.Duration(t) * time.Millisecond
}

// Components splits the timecode into hours, minutes, seconds and milliseconds.
// Negative timecodes report zero components.
func (t Timecode) Components() (hours, minutes, seconds, millis int) {
	if t < 0 {
		return 0, 0, 0, 0
	}
	ms := int64(t)
	hours = int(ms / 3_600_000)
	ms %= 3_600_000
	minutes = int(ms / 60_000)
	ms %= 60_000
	seconds = int(ms / 1000)
	millis = int(ms % 1000)
	return hours, minutes, seconds, millis
}

// String formats the timecode as HH:MM:SS,mmm.
func (t Timecode) String() string {
	h, m, s, ms := t.Components()
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseTimecode parses HH:MM:SS,mmm. A period is accepted in place of the comma
// and the fraction may carry fewer than three digits.
func ParseTimecode(value string) (Timecode, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	clock, frac, hasFrac := strings.Cut(value, ",")
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	if errH != nil || errM != nil || errS != nil || hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	var millis int
	if hasFrac {
		if frac == "" || len(frac) > 3 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		n, err := strconv.Atoi(frac)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		for i := len(frac); i < 3; i++ {
			n *= 10
		}
		millis = n
	}
	total := int64(hours)*3_600_000 + int64(minutes)*60_000 + int64(seconds)*1000 + int64(millis)
	return Timecode(total), nil
}
