package i18n

import (
	"golang.org/x/text/language"
)

// maxAcceptLanguageLength caps the header length considered for matching.
const maxAcceptLanguageLength = 4096

// MatchAcceptLanguage picks the best language from the available list for
// an Accept-Language header, honoring quality values and base-language
// matching ("en-US" matches "en"). Falls back to the first available
// language when the header is empty or matches nothing.
func MatchAcceptLanguage(header string, available []string) string {
	if len(available) == 0 {
		return ""
	}
	if header == "" {
		return available[0]
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	tags := make([]language.Tag, 0, len(available))
	indexes := make([]int, 0, len(available))
	for i, lang := range available {
		tag, err := language.Parse(lang)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		indexes = append(indexes, i)
	}
	if len(tags) == 0 {
		return available[0]
	}

	accepted, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(accepted) == 0 {
		return available[0]
	}

	_, idx, conf := language.NewMatcher(tags).Match(accepted...)
	if conf == language.No {
		return available[0]
	}
	return available[indexes[idx]]
}

// TranslatorForRequest builds a Translator for the language the
// Accept-Language header negotiates against the catalog's languages.
func TranslatorForRequest(catalog *Catalog, acceptLanguage string) *Translator {
	lang := MatchAcceptLanguage(acceptLanguage, catalog.Languages())
	return NewTranslator(catalog, lang)
}
