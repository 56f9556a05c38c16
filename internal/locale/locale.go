package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale identifies one of the languages the site is published in.
type Locale string

const (
	ES Locale = "es"
	EN Locale = "en"
)

// Default is the locale used when nothing has been stored yet.
const Default = ES

var supportedTags = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supportedTags)

// Supported returns every locale in display order.
func Supported() []Locale {
	return []Locale{ES, EN}
}

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	return l == ES || l == EN
}

// Parse accepts only the exact supported codes ("es", "en"), ignoring case
// and surrounding whitespace.
func Parse(s string) (Locale, bool) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", false
	}
	return l, true
}

// Match resolves a BCP 47 tag such as "en-US" or "es-419" to the closest
// supported locale. The bool is false when the input does not parse or has
// no reasonable match.
func Match(s string) (Locale, bool) {
	if l, ok := Parse(s); ok {
		return l, true
	}
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return "", false
	}
	return Supported()[idx], true
}

// Other returns the locale the language toggle switches to.
func (l Locale) Other() Locale {
	if l == EN {
		return ES
	}
	return EN
}

// ToggleLabel is the text shown on the language toggle while l is active:
// the code of the language a click switches to.
func (l Locale) ToggleLabel() string {
	return strings.ToUpper(string(l.Other()))
}

// Name returns the native display name of the locale.
func (l Locale) Name() string {
	switch l {
	case EN:
		return "English"
	default:
		return "Español"
	}
}
