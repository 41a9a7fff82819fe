package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-3, the form the aligner expects
	alt3    []string // bibliographic or legacy 3-letter forms
	display string
	words   []string
}

var languages = []entry{
	{"en", "eng", nil, "English", []string{"english"}},
	{"es", "spa", nil, "Spanish", []string{"spanish", "espanol"}},
	{"fr", "fra", []string{"fre"}, "French", []string{"french"}},
	{"de", "deu", []string{"ger"}, "German", []string{"german"}},
	{"it", "ita", nil, "Italian", []string{"italian"}},
	{"pt", "por", nil, "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", nil, "Japanese", []string{"japanese"}},
	{"ko", "kor", nil, "Korean", []string{"korean"}},
	{"zh", "cmn", []string{"zho", "chi"}, "Mandarin Chinese", []string{"chinese", "mandarin"}},
	{"ru", "rus", nil, "Russian", []string{"russian"}},
	{"ar", "ara", nil, "Arabic", []string{"arabic"}},
	{"nl", "nld", []string{"dut"}, "Dutch", []string{"dutch"}},
	{"pl", "pol", nil, "Polish", []string{"polish"}},
	{"sv", "swe", nil, "Swedish", []string{"swedish"}},
	{"da", "dan", nil, "Danish", []string{"danish"}},
	{"no", "nor", nil, "Norwegian", []string{"norwegian"}},
	{"fi", "fin", nil, "Finnish", []string{"finnish"}},
}

var index map[string]*entry

func init() {
	index = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		index[e.code2] = e
		index[e.code3] = e
		for _, alt := range e.alt3 {
			index[alt] = e
		}
		for _, w := range e.words {
			index[w] = e
		}
	}
}

func lookup(code string) *entry {
	return index[strings.ToLower(strings.TrimSpace(code))]
}

// TaskLanguage maps a language code, 3-letter code, or English name to the
// ISO 639-3 code passed to the aligner. Unknown 3-letter codes pass through
// lowercased; anything else reports false.
func TaskLanguage(code string) (string, bool) {
	if e := lookup(code); e != nil {
		return e.code3, true
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) == 3 && isLetters(code) {
		return code, true
	}
	return "", false
}

// DisplayName returns a readable name for code, "Unknown" for empty input,
// or the uppercased code when it is not recognized.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
