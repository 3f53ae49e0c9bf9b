// Package i18n provides the message catalogs for user-facing text.
// English is the fallback; Chinese overlays it when selected.
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// catalogs maps normalized locales to their message sets. English is
// always merged in first, so a catalog only needs the keys it translates.
var catalogs = map[string]map[string]string{
	"en":    EnMessages,
	"zh-CN": ZhCNMessages,
}

// I18n is an immutable message lookup for one locale.
type I18n struct {
	locale   string
	messages map[string]string
}

var (
	mu     sync.Mutex
	global *I18n
)

// Global returns the process-wide instance, building it from the
// environment on first use.
func Global() *I18n {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = New("")
	}
	return global
}

// Init replaces the process-wide instance with one for the given locale.
func Init(locale string) {
	mu.Lock()
	global = New(locale)
	mu.Unlock()
}

// T translates through the global instance.
func T(key string, args ...any) string {
	return Global().T(key, args...)
}

// New creates an instance. An empty locale is detected from the
// environment.
func New(locale string) *I18n {
	locale = normalizeLocale(locale)
	if locale == "" || catalogs[locale] == nil {
		locale = DetectLocale()
	}

	messages := make(map[string]string, len(EnMessages))
	for k, v := range EnMessages {
		messages[k] = v
	}
	if locale != "en" {
		for k, v := range catalogs[locale] {
			messages[k] = v
		}
	}

	return &I18n{locale: locale, messages: messages}
}

// T translates key, formatting args into the template. An unknown key
// comes back verbatim.
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale returns the normalized locale in use.
func (i *I18n) Locale() string {
	return i.locale
}

// DetectLocale reads the locale from the environment, falling back to
// English when nothing usable is set.
func DetectLocale() string {
	for _, env := range []string{"OPENWORK_LANG", "LANG", "LC_ALL", "LC_MESSAGES"} {
		value := strings.TrimSpace(os.Getenv(env))
		if value == "" {
			continue
		}
		if locale := normalizeLocale(value); catalogs[locale] != nil {
			return locale
		}
	}
	return "en"
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "en"
	}
	// strip .UTF-8 style suffixes
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	switch lower := strings.ToLower(s); {
	case strings.HasPrefix(lower, "zh"):
		return "zh-CN"
	case strings.HasPrefix(lower, "en"):
		return "en"
	}
	return s
}
