// Package translate renders diagnostic text through a locale-aware message
// printer.
package translate

import (
	"sync"

	"github.com/jeandeaual/go-locale"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	lock    sync.RWMutex
	printer *message.Printer
	current language.Tag
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		logrus.Debugf("translate: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	SetLanguage(locales...)
}

// SetLanguage selects the first parseable BCP 47 tag, falling back to
// American English.
func SetLanguage(tags ...string) {
	tag := language.AmericanEnglish
	for _, str := range tags {
		parsed, err := language.Parse(str)
		if err == nil {
			tag = parsed
			break
		}
	}

	lock.Lock()
	defer lock.Unlock()

	current = tag
	printer = message.NewPrinter(tag)
}

// Language returns the currently selected language.
func Language() language.Tag {
	lock.RLock()
	defer lock.RUnlock()

	return current
}

// IsGerman is true when the selected language is German.
func IsGerman() bool {
	base, _ := Language().Base()
	return base.String() == "de"
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	lock.RLock()
	defer lock.RUnlock()

	return printer.Sprintf(key, args...)
}
