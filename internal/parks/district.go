// Package parks holds the Portland district → park-name dataset and the
// lookup that turns a free-text location into a list of park suggestions.
//
// A [Table] is immutable once built and may be read from any number of
// goroutines without synchronisation. The [Store] owns the current table and
// swaps it atomically on reload, so lookups never observe a partially loaded
// dataset.
//
// Loading never leaves the caller without a table: when the dataset file is
// missing or malformed the store falls back to an empty table, which turns
// every lookup into a miss that returns [InvalidLocationMessage].
package parks

// District is one of the five fixed Portland quadrants used as lookup keys.
type District string

const (
	North     District = "north"
	Northeast District = "northeast"
	Southeast District = "southeast"
	Southwest District = "southwest"
	Northwest District = "northwest"
)

// Districts lists every valid district in the order they are presented to
// users in the invalid-location help text.
var Districts = []District{North, Northeast, Southeast, Southwest, Northwest}

// IsValid reports whether d is a recognised district.
func (d District) IsValid() bool {
	switch d {
	case North, Northeast, Southeast, Southwest, Northwest:
		return true
	}
	return false
}

// String returns the lowercase district key.
func (d District) String() string { return string(d) }
