package parks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultPath is the dataset location, relative to the working directory,
// used when no other path is configured.
const DefaultPath = "./db/parks.json"

var (
	// ErrDatasetNotFound is returned when the dataset file does not exist.
	ErrDatasetNotFound = errors.New("parks: dataset file not found")

	// ErrDatasetMalformed is returned when the dataset is not a JSON object
	// mapping district names to arrays of strings.
	ErrDatasetMalformed = errors.New("parks: dataset is not properly formatted")
)

// loadFile reads and decodes the dataset at path.
//
// A missing file yields an error wrapping [ErrDatasetNotFound]; content that
// does not decode yields an error wrapping [ErrDatasetMalformed]. Any other
// failure is returned wrapped with the path.
func loadFile(path string) (*Table, error) {
	t, _, err := loadAndHash(path)
	return t, err
}

// Decode parses a JSON dataset of the form
//
//	{"north": ["Park A", "Park B"], "southeast": ["Park C"]}
//
// Keys are matched exactly against the lowercase district names; unknown keys
// are logged and dropped because no lookup can ever reach them.
func Decode(data []byte) (*Table, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrDatasetMalformed)
	}

	m := make(map[District][]string, len(raw))
	for key, names := range raw {
		d := District(key)
		if !d.IsValid() {
			slog.Warn("parks: ignoring unknown district in dataset", "district", key)
			continue
		}
		m[d] = names
	}
	return NewTable(m), nil
}
