package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/pdxparks/internal/parks"
)

// DatasetSource is the part of [parks.Store] the dataset check needs.
type DatasetSource interface {
	Table() *parks.Table
	Err() error
}

// Dataset returns a [Checker] named "dataset" that fails while src serves an
// empty table. The most recent load error, if any, is included in the message.
func Dataset(src DatasetSource) Checker {
	return Checker{
		Name: "dataset",
		Check: func(context.Context) error {
			if !src.Table().Empty() {
				return nil
			}
			if err := src.Err(); err != nil {
				return fmt.Errorf("no districts loaded: %w", err)
			}
			return errors.New("no districts loaded")
		},
	}
}
