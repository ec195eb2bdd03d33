package cpu

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/ezrec/awl/translate"
)

// Mnemonics selects the instruction and operand spelling used in
// diagnostics. It has no effect on execution.
type Mnemonics int

const (
	MNEMONICS_AUTO = Mnemonics(0) // follow the locale
	MNEMONICS_DE   = Mnemonics(1) // German (SIMATIC)
	MNEMONICS_EN   = Mnemonics(2) // English (International)
)

// Resolve maps MNEMONICS_AUTO onto the locale's language.
func (m Mnemonics) Resolve() Mnemonics {
	if m != MNEMONICS_AUTO {
		return m
	}
	if translate.IsGerman() {
		return MNEMONICS_DE
	}
	return MNEMONICS_EN
}

func (m Mnemonics) String() string {
	switch m {
	case MNEMONICS_DE:
		return "de"
	case MNEMONICS_EN:
		return "en"
	}
	return "auto"
}

// ParseMnemonics accepts "auto" or a language tag; German tags select
// MNEMONICS_DE, anything else MNEMONICS_EN.
func ParseMnemonics(name string) (m Mnemonics, err error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "auto") {
		m = MNEMONICS_AUTO
		return
	}
	tag, err := language.Parse(name)
	if err != nil {
		err = ErrMnemonics(name)
		return
	}
	base, _ := tag.Base()
	if base.String() == "de" {
		m = MNEMONICS_DE
	} else {
		m = MNEMONICS_EN
	}
	return
}
