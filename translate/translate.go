// Package translate localizes the user visible text of the emulator.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer     *message.Printer
	printerOnce sync.Once
)

// fallback is used when the host reports no usable locale.
var fallback = language.AmericanEnglish

func load() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("dcpu16: locale: %v", err)
	}

	tags := make([]string, 0, len(locales)+1)
	tags = append(tags, locales...)
	tags = append(tags, fallback.String())

	printer = message.NewPrinter(message.MatchLanguage(tags...))
}

// Printer returns the process wide localized printer.
func Printer() *message.Printer {
	printerOnce.Do(load)
	return printer
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return Printer().Sprintf(key, args...)
}
