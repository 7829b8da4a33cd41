package geo

import (
	"fmt"

	"github.com/freightplan/freightplan/core/model"
)

// Resolver maps a place name to coordinates. The routing core only ever
// consumes already-resolved coordinates; resolvers live at the ingestion edge.
type Resolver interface {
	Resolve(place string) (model.Point, error)
}

// StaticResolver resolves from a fixed in-memory table.
type StaticResolver map[string]model.Point

// Resolve implements Resolver. A miss is an error, never a guess.
func (r StaticResolver) Resolve(place string) (model.Point, error) {
	p, ok := r[place]
	if !ok {
		return model.Point{}, fmt.Errorf("unknown place %q", place)
	}
	return p, nil
}
