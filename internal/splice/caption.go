package splice

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"cuesplice/internal/config"
)

// Style controls how captions are drawn on replaced segments.
type Style struct {
	FontFile  string
	FontSize  int
	FontColor string
	BGColor   string
	BGOpacity float64
	Margin    int
	Padding   int
}

// StyleFromConfig copies the caption settings out of the splice section.
func StyleFromConfig(s config.Splice) Style {
	return Style{
		FontFile:  s.FontFile,
		FontSize:  s.FontSize,
		FontColor: s.FontColor,
		BGColor:   s.BGColor,
		BGOpacity: s.BGOpacity,
		Margin:    s.Margin,
		Padding:   s.Padding,
	}
}

// glyphWidth approximates the advance of an average glyph as a share of the
// font size.
const glyphWidth = 0.55

// WrapCaption breaks text into lines that fit a box at most frameWidth -
// 2*margin pixels wide. Words longer than a line are kept whole.
func WrapCaption(text string, frameWidth int, style Style) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	limit := maxLineChars(frameWidth, style)
	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() == 0 {
			line.WriteString(word)
			continue
		}
		if utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(word) > limit {
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			continue
		}
		line.WriteByte(' ')
		line.WriteString(word)
	}
	lines = append(lines, line.String())
	return lines
}

func maxLineChars(frameWidth int, style Style) int {
	box := frameWidth - 2*style.Margin - style.Padding
	size := style.FontSize
	if size <= 0 {
		size = 36
	}
	n := int(float64(box) / (float64(size) * glyphWidth))
	return max(n, 1)
}

// drawTextFilter renders the caption in textFile centered near the bottom
// of the frame on a translucent box, visible for the first duration seconds.
func drawTextFilter(style Style, textFile string, duration float64) string {
	size := style.FontSize
	if size <= 0 {
		size = 36
	}
	opts := []string{}
	if font := strings.TrimSpace(style.FontFile); font != "" {
		opts = append(opts, "fontfile="+quoteFilterValue(font))
	}
	opts = append(opts,
		"textfile="+quoteFilterValue(textFile),
		"fontsize="+strconv.Itoa(size),
		"fontcolor="+ffmpegColor(style.FontColor, 1),
		"box=1",
		"boxcolor="+ffmpegColor(style.BGColor, style.BGOpacity),
		"boxborderw="+strconv.Itoa(style.Padding),
		"text_align=C",
		"x=(w-text_w)/2",
		fmt.Sprintf("y=h-text_h-%d", style.Padding+style.Margin),
		fmt.Sprintf("enable='lt(t,%s)'", formatSeconds(duration)),
	)
	return "drawtext=" + strings.Join(opts, ":")
}

// ffmpegColor accepts a color name, #rrggbb, or "(r, g, b)" and returns an
// ffmpeg color with the given opacity.
func ffmpegColor(value string, opacity float64) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "black"
	}
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		parts := strings.Split(strings.Trim(value, "()"), ",")
		if len(parts) == 3 {
			var rgb [3]int
			ok := true
			for i, p := range parts {
				n, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil || n < 0 || n > 255 {
					ok = false
					break
				}
				rgb[i] = n
			}
			if ok {
				value = fmt.Sprintf("0x%02X%02X%02X", rgb[0], rgb[1], rgb[2])
			}
		}
	}
	if opacity >= 1 || opacity < 0 {
		return value
	}
	return value + "@" + strconv.FormatFloat(opacity, 'f', -1, 64)
}

func quoteFilterValue(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
