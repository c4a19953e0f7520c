package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// words maps English language names found in track titles and manifests to tags.
var words = map[string]string{
	"english":    "en",
	"vietnamese": "vi",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"thai":       "th",
	"indonesian": "id",
}

// bibliographic holds ISO 639-2/B codes that the tag parser does not accept.
var bibliographic = map[string]string{
	"fre": "fr",
	"ger": "de",
	"chi": "zh",
	"dut": "nl",
	"cze": "cs",
	"gre": "el",
	"per": "fa",
	"rum": "ro",
	"slo": "sk",
	"wel": "cy",
	"alb": "sq",
	"arm": "hy",
	"baq": "eu",
	"bur": "my",
	"geo": "ka",
	"ice": "is",
	"mac": "mk",
	"mao": "mi",
	"may": "ms",
	"tib": "bo",
}

// Parse resolves ISO 639-1/639-2 codes, BCP 47 tags, and English language
// names to a language tag. Unrecognized or undetermined input reports false.
func Parse(code string) (xlanguage.Tag, bool) {
	code = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(code, "\u0000", "")))
	if code == "" || code == "und" {
		return xlanguage.Und, false
	}
	if mapped, ok := words[code]; ok {
		code = mapped
	} else if mapped, ok := bibliographic[code]; ok {
		code = mapped
	}
	tag, err := xlanguage.Parse(code)
	if err != nil || tag == xlanguage.Und {
		return xlanguage.Und, false
	}
	return tag, true
}

// ToISO2 converts any recognized language code or word to its base language
// subtag (ISO 639-1 where one exists). Returns empty string for unrecognized input.
func ToISO2(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// SameBase reports whether two codes name the same base language, e.g. "eng"
// and "en-US".
func SameBase(a, b string) bool {
	ta, okA := Parse(a)
	tb, okB := Parse(b)
	if !okA || !okB {
		return false
	}
	ba, _ := ta.Base()
	bb, _ := tb.Base()
	return ba == bb
}

// DisplayName returns a human-readable English language name for any
// recognized code. Returns "Unknown" for empty input, or the uppercased code
// for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	tag, ok := Parse(code)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	base, _ := tag.Base()
	if name := display.English.Languages().Name(xlanguage.Make(base.String())); name != "" {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// ExtractFromTags extracts and normalizes the language from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
