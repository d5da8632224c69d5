package scaleinfo

import "fmt"

// ShortRegistry is a shortened type registry, as produced by an external
// metadata shortener: only the types reachable from a particular call
// survive, under new compact ids, with a table mapping the original ids to
// the new ones.
type ShortRegistry struct {
	registry *PortableRegistry
	idTable  map[uint32]uint32 // old id -> shortened id
}

var _ Registry = (*ShortRegistry)(nil)

// NewShortRegistry builds a shortened registry from the surviving types
// (keyed by their shortened ids) and the old-to-new id table.
func NewShortRegistry(types map[uint32]*Type, idTable map[uint32]uint32) *ShortRegistry {
	return &ShortRegistry{
		registry: NewPortableRegistry(types),
		idTable:  idTable,
	}
}

// V14ShortTypesIncompleteError is returned when an original type id has no
// entry in the shortening table, i.e. the shortener did not keep a type the
// data turned out to need.
type V14ShortTypesIncompleteError struct {
	OldID uint32
}

func (e V14ShortTypesIncompleteError) Error() string {
	return fmt.Sprintf("unable to resolve type with old id %d in shortened metadata type registry", e.OldID)
}

// V14TypeNotResolvedShortenedError is returned when a shortened id resolved
// through the table is missing from the shortened registry itself.
type V14TypeNotResolvedShortenedError struct {
	ID uint32
}

func (e V14TypeNotResolvedShortenedError) Error() string {
	return fmt.Sprintf("unable to resolve type with updated id %d in shortened metadata type registry", e.ID)
}

// ResolveTy implements Registry. The id is an original (pre-shortening) id.
func (r *ShortRegistry) ResolveTy(id uint32) (*Type, error) {
	short, ok := r.idTable[id]
	if !ok {
		return nil, V14ShortTypesIncompleteError{OldID: id}
	}
	ty, err := r.registry.ResolveTy(short)
	if err != nil {
		return nil, V14TypeNotResolvedShortenedError{ID: short}
	}
	return ty, nil
}
