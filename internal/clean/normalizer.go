package clean

import (
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
)

var (
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	urlRe         = regexp.MustCompile(`http\S+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	boilerplateRe = regexp.MustCompile(`(?i)(Read more|Click here|Share this).*`)
)

// Normalizer strips markup and boilerplate from raw text and rejects
// fragments that are too short or in a disallowed language.
type Normalizer struct {
	minLength int
	allowed   map[string]struct{}
}

// NewNormalizer creates a normalizer. Languages are ISO 639-1 codes
// ("en", "zh"); an empty rejected result means the input was dropped.
func NewNormalizer(minLength int, languages []string) *Normalizer {
	if minLength <= 0 {
		minLength = 40
	}
	allowed := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		if iso3, ok := iso3Codes[l]; ok {
			allowed[iso3] = struct{}{}
		} else {
			allowed[l] = struct{}{}
		}
	}
	return &Normalizer{minLength: minLength, allowed: allowed}
}

// Clean returns the cleaned text, or "" if the input is rejected.
// An unreliable language detection keeps the text; only a confident
// detection of a disallowed language rejects it.
func (n *Normalizer) Clean(text string) string {
	text = tagRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = boilerplateRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if len([]rune(text)) < n.minLength {
		return ""
	}
	info := whatlanggo.Detect(text)
	if info.IsReliable() {
		if _, ok := n.allowed[whatlanggo.LangToString(info.Lang)]; !ok {
			return ""
		}
	}
	return text
}

// whatlanggo reports ISO 639-3; config speaks ISO 639-1.
var iso3Codes = map[string]string{
	"en": "eng",
	"zh": "cmn",
	"sv": "swe",
	"fr": "fra",
	"de": "deu",
	"es": "spa",
	"ja": "jpn",
	"ko": "kor",
	"ru": "rus",
}
