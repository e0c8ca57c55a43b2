package chatbot

import (
	"sync"

	"ConciergeChat/internal/i18n"
)

// Preferences holds the visitor's display preferences for the lifetime of the process.
// It is shared by the controller and the view; nothing is persisted.
type Preferences struct {
	mu       sync.RWMutex
	language i18n.Language
}

// NewPreferences creates preferences starting in lang, or the default language when lang is unsupported.
func NewPreferences(lang i18n.Language) *Preferences {
	if _, err := i18n.Parse(string(lang)); err != nil {
		lang = i18n.Default
	}
	return &Preferences{language: lang}
}

// Language returns the current display language.
func (p *Preferences) Language() i18n.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.language
}

// SetLanguage switches the display language. Unsupported languages are rejected.
func (p *Preferences) SetLanguage(lang i18n.Language) error {
	parsed, err := i18n.Parse(string(lang))
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.language = parsed
	p.mu.Unlock()
	return nil
}

// T translates key into the current language.
func (p *Preferences) T(key i18n.Key) string {
	return i18n.Get(p.Language(), key)
}
