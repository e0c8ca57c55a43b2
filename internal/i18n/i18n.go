// Package i18n holds the display texts of the concierge client for every supported locale.
package i18n

import (
	"errors"
	"fmt"
	"strings"
)

// Language is a supported display locale
type Language string

const (
	English Language = "en"
	French  Language = "fr"

	Default = English
)

// ErrUnsupportedLanguage is returned by Parse for locales outside the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Key names one entry of the translation table
type Key string

const (
	Welcome            Key = "welcome"
	ClearChat          Key = "clearChat"
	TypeMessage        Key = "typeMessage"
	HotelName          Key = "hotelName"
	VirtualConcierge   Key = "virtualConcierge"
	ResponseTime       Key = "responseTime"
	NewChat            Key = "newChat"
	DeleteChat         Key = "deleteChat"
	ChatName           Key = "chatName"
	DefaultChatName    Key = "defaultChatName"
	ConfirmDeleteChat  Key = "confirmDeleteChat"
	ChatCleared        Key = "chatCleared"
	AllMessagesRemoved Key = "allMessagesRemoved"
	ErrorTitle         Key = "errorTitle"
	ScanToChat         Key = "scanToChat"
	SelectLanguage     Key = "selectLanguage"
	KeyHints           Key = "keyHints"
	CloseHint          Key = "closeHint"
)

var languages = []Language{English, French}

var labels = map[Language]string{
	English: "English",
	French:  "Français",
}

var translations = map[Language]map[Key]string{
	English: {
		Welcome:            "Welcome to Hotel Finesse! How may I assist you today?",
		ClearChat:          "Clear Chat",
		TypeMessage:        "Type your message...",
		HotelName:          "Hotel Finesse",
		VirtualConcierge:   "Virtual Receptionist",
		ResponseTime:       "Response time",
		NewChat:            "New Chat",
		DeleteChat:         "Delete Chat",
		ChatName:           "Chat Name",
		DefaultChatName:    "New Conversation",
		ConfirmDeleteChat:  "Are you sure you want to delete this chat?",
		ChatCleared:        "Chat cleared",
		AllMessagesRemoved: "All messages have been removed",
		ErrorTitle:         "Error",
		ScanToChat:         "Scan to chat with Hotel Finesse",
		SelectLanguage:     "Language",
		KeyHints:           "enter send · ctrl+l clear chat · ctrl+t language · ctrl+q QR code · ctrl+c quit",
		CloseHint:          "esc to close",
	},
	French: {
		Welcome:            "Bienvenue à l'Hôtel Finesse ! Comment puis-je vous aider aujourd'hui ?",
		ClearChat:          "Effacer la Discussion",
		TypeMessage:        "Tapez votre message...",
		HotelName:          "Hôtel Finesse",
		VirtualConcierge:   "Réceptionniste Virtuel",
		ResponseTime:       "Temps de réponse",
		NewChat:            "Nouvelle Discussion",
		DeleteChat:         "Supprimer la Discussion",
		ChatName:           "Nom de la Discussion",
		DefaultChatName:    "Nouvelle Conversation",
		ConfirmDeleteChat:  "Êtes-vous sûr de vouloir supprimer cette discussion ?",
		ChatCleared:        "Discussion effacée",
		AllMessagesRemoved: "Tous les messages ont été supprimés",
		ErrorTitle:         "Erreur",
		ScanToChat:         "Scannez pour discuter avec l'Hôtel Finesse",
		SelectLanguage:     "Langue",
		KeyHints:           "entrée envoyer · ctrl+l effacer · ctrl+t langue · ctrl+q code QR · ctrl+c quitter",
		CloseHint:          "échap pour fermer",
	},
}

// Languages returns the supported locales in menu order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Keys returns every key of the translation table.
func Keys() []Key {
	keys := make([]Key, 0, len(translations[Default]))
	for k := range translations[Default] {
		keys = append(keys, k)
	}
	return keys
}

// Label returns the name of the language in its own locale.
func (l Language) Label() string {
	if label, ok := labels[l]; ok {
		return label
	}
	return string(l)
}

// Get looks up key for lang. Unknown languages fall back to the default locale.
func Get(lang Language, key Key) string {
	table, ok := translations[lang]
	if !ok {
		table = translations[Default]
	}
	if text, ok := table[key]; ok {
		return text
	}
	return string(key)
}

// Parse maps a locale string such as "fr" or "FR" onto a supported Language.
func Parse(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := translations[lang]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
	return lang, nil
}
