package voice

import "sort"

// langAccents maps a synthesis language to the accent endpoints the
// translate service offers for it. The accent is the TLD the request
// is routed through; "us" is the plain .com voice for most languages.
var langAccents = map[string][]string{
	"en":    {"com.au", "co.uk", "us", "ca", "co.in", "ie", "co.za", "com.ng"},
	"fr":    {"ca", "fr"},
	"zh-CN": {"com"},
	"zh-TW": {"com"},
	"pt":    {"com.br", "pt"},
	"es":    {"com.mx", "es", "us"},
}

// Languages lists the supported synthesis languages.
func Languages() []string {
	langs := make([]string, 0, len(langAccents))
	for lang := range langAccents {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Accents lists the accents available for a language.
func Accents(lang string) []string {
	return append([]string(nil), langAccents[lang]...)
}

// ValidVoice reports whether the language/accent pair is supported.
func ValidVoice(lang, accent string) bool {
	for _, a := range langAccents[lang] {
		if a == accent {
			return true
		}
	}
	return false
}
