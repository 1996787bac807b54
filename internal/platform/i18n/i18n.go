// Package i18n carries the bilingual (Arabic/English) message pairs that
// travel on every user-facing error and notification.
package i18n

import "fmt"

// Message is an Arabic/English text pair. Both fields are always set;
// clients pick the language at render time.
type Message struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// Language selects which side of a Message to render.
type Language string

const (
	LangAr Language = "ar"
	LangEn Language = "en"
)

// In returns the text for lang, falling back to English for anything
// that is not Arabic.
func (m Message) In(lang Language) string {
	if lang == LangAr {
		return m.Ar
	}
	return m.En
}

// IsZero reports whether both sides are empty.
func (m Message) IsZero() bool {
	return m.Ar == "" && m.En == ""
}

// Msgf formats both sides of a message with the same arguments. The two
// format strings must expect identical verbs in identical order.
func Msgf(ar, en string, args ...any) Message {
	if len(args) == 0 {
		return Message{Ar: ar, En: en}
	}
	return Message{
		Ar: fmt.Sprintf(ar, args...),
		En: fmt.Sprintf(en, args...),
	}
}
