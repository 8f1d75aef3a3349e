/*
Package avatar derives the placeholder avatar shown for users and contacts without a photo.

The derivation is a pure function of the display name: a background color computed from a
32-bit string hash and one or two uppercase initials. Clients render the same avatar for the
same name on every device, so the algorithm must stay bit-for-bit stable.
*/
package avatar

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultColor is the neutral gray used when the name is too short to hash.
	DefaultColor = "#bdbdbd"

	// NoInitials is the literal placeholder rendered when no initials can be derived.
	NoInitials = "null"

	// minNameLength is the shortest name, in UTF-16 code units, that gets a derived avatar.
	minNameLength = 2
)

// Spec is the derived avatar for a single display name.
type Spec struct {
	DisplayName     string `json:"-"`
	BackgroundColor string `json:"backgroundColor"`
	Initials        string `json:"initials"`
}

// Derive computes the avatar for name. It never fails: names shorter than two
// code units get DefaultColor and NoInitials.
func Derive(name string) Spec {
	spec := Spec{
		DisplayName:     name,
		BackgroundColor: DefaultColor,
		Initials:        NoInitials,
	}

	units := utf16.Encode([]rune(name))
	if len(units) < minNameLength {
		return spec
	}

	spec.BackgroundColor = colorOf(units)
	spec.Initials = initialsOf(name)

	return spec
}

// Color returns only the background color half of Derive.
func Color(name string) string {
	return Derive(name).BackgroundColor
}

// Initials returns only the initials half of Derive.
func Initials(name string) string {
	return Derive(name).Initials
}

// colorOf hashes the code units with wrap-around int32 arithmetic and renders the
// three low bytes, least significant first.
func colorOf(units []uint16) string {
	var hash int32
	for _, u := range units {
		hash = int32(u) + ((hash << 5) - hash)
	}

	var b strings.Builder
	b.WriteByte('#')
	for i := 0; i < 3; i++ {
		value := (hash >> (i * 8)) & 0xff
		fmt.Fprintf(&b, "%02x", value)
	}

	return b.String()
}

// initialsOf takes the first and last character of a single-word name, or the first
// characters of the first and last words otherwise. Empty words (from repeated,
// leading or trailing spaces) contribute nothing.
func initialsOf(name string) string {
	// A Caser keeps state between calls, so each derivation gets its own.
	tokens := strings.Split(cases.Upper(language.Und).String(name), " ")

	var initials string
	if len(tokens) == 1 {
		word := []rune(tokens[0])
		if len(word) > 0 {
			initials = string(word[0]) + string(word[len(word)-1])
		}
	} else {
		initials = firstRune(tokens[0]) + firstRune(tokens[len(tokens)-1])
	}

	if initials == "" {
		return NoInitials
	}

	return initials
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
