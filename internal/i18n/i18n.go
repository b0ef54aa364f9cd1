// Package i18n provides user-facing message translation.
//
// The pipeline must always return some text, so generator failures are
// turned into fixed messages in the response language. Indonesian is the
// default, matching the knowledge base.
package i18n

import (
	"fmt"
	"os"
	"strings"
)

// Supported languages
const (
	LangID = "id"
	LangEN = "en"
)

// currentLang holds the current language setting
var currentLang = LangID

// messages stores all translations
var messages = make(map[string]map[string]string)

// Init initializes the i18n system with the specified language.
func Init(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))

	switch lang {
	case "id", "id-id", "indonesian", "bahasa":
		currentLang = LangID
	case "en", "en-us", "english":
		currentLang = LangEN
	default:
		if envLang := os.Getenv("RFIDRAG_LANGUAGE"); envLang != "" && envLang != lang {
			Init(envLang)
			return
		}
		currentLang = LangID
	}

	loadMessages()
}

// Language returns the current language.
func Language() string {
	return currentLang
}

// T returns the translated message for the given key.
// Falls back to Indonesian, then to the key itself.
func T(key string) string {
	if msg, ok := messages[currentLang][key]; ok {
		return msg
	}
	if msg, ok := messages[LangID][key]; ok {
		return msg
	}
	return key
}

// Sprintf returns the translated and formatted message.
func Sprintf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// loadMessages initializes the message maps.
func loadMessages() {
	if len(messages) == 0 {
		messages[LangID] = messagesID()
		messages[LangEN] = messagesEN()
	}
}

func init() {
	loadMessages()
}
