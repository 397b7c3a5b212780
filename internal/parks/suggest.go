package parks

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InvalidLocationMessage is returned verbatim for any location that does not
// normalise to a known district. Clients compare it byte for byte, so the
// indentation and blank lines are part of the contract.
const InvalidLocationMessage = "\n" +
	"                invalid location request provide one of the following: \n\n" +
	"                \n" +
	"                * 'north' \n\n" +
	"                * 'northeast' \n\n" +
	"                * 'southeast' \n\n" +
	"                * 'southwest' \n\n" +
	"                * 'northwest' \n\n" +
	"                "

// NormalizeKey trims surrounding whitespace from location and lower-cases the
// result. The returned value is the lookup key.
//
// Whitespace is Unicode whitespace plus the information separators
// U+001C..U+001F, which clients written against str.strip() also drop.
// Lower-casing follows the full Unicode mapping rather than ASCII only. A
// Caser holds state, so a fresh one is built per call.
func NormalizeKey(location string) string {
	return cases.Lower(language.Und).String(strings.TrimFunc(location, isSpace))
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Suggest maps location onto the park suggestions for its district.
//
// On a hit the result lists every park for the district in table order:
//
//	it appears you are looking for parks in the: north
//	 here are some suggestions
//	  * Park A
//	  * Park B
//
// Any other input, including every input against a nil or empty table,
// returns [InvalidLocationMessage]. Suggest is pure and safe for concurrent
// use.
func Suggest(t *Table, location string) string {
	s, _ := suggest(t, location)
	return s
}

// suggest is [Suggest] that also reports the matched district, or "" on a miss.
func suggest(t *Table, location string) (string, District) {
	key := District(NormalizeKey(location))
	names, ok := t.Lookup(key)
	if !ok {
		return InvalidLocationMessage, ""
	}

	var sb strings.Builder
	sb.WriteString("it appears you are looking for parks in the: ")
	sb.WriteString(string(key))
	sb.WriteString(" \n here are some suggestions \n ")
	for _, name := range names {
		sb.WriteString(" * ")
		sb.WriteString(name)
		sb.WriteString(" \n")
	}
	return sb.String(), key
}

// Result is the outcome of a single lookup.
type Result struct {
	// Text is the user-facing response.
	Text string

	// District is the matched district, or "" on a miss.
	District District
}

// Hit reports whether the lookup matched a district.
func (r Result) Hit() bool { return r.District != "" }

// Lookup is [Suggest] returning a [Result] so callers can tell hits from
// misses without comparing strings.
func Lookup(t *Table, location string) Result {
	text, d := suggest(t, location)
	return Result{Text: text, District: d}
}
