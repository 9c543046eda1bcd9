// Package language normalizes language identifiers. Whisper, caption tracks,
// and user configuration disagree on spelling (ISO 639-1 codes, ISO 639-2
// codes, full names); everything quill stores or displays goes through the
// mappings here.
package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"da", "dan", "", "Danish", []string{"danish"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"uk", "ukr", "", "Ukrainian", []string{"ukrainian"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"vi", "vie", "", "Vietnamese", []string{"vietnamese"}},
	{"id", "ind", "", "Indonesian", []string{"indonesian"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts any recognized language code or name to ISO 639-1.
// Unrecognized 2-letter codes pass through; other unrecognized input
// returns the empty string so callers can keep their original value.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable language name for any recognized
// code. Unrecognized input comes back uppercased so raw codes still read
// as labels; empty input yields "Unknown".
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
