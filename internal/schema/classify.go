package schema

import (
	"github.com/roach88/dimarray/internal/ir"
)

// Classification partitions a schema's fields by role.
type Classification struct {
	Primary     ir.FieldDescriptor
	Coordinates []ir.FieldDescriptor
	Passthrough []ir.FieldDescriptor
}

// Classify designates the first field as the primary data field and splits
// the rest into coordinates and passthrough fields, keeping declaration order.
//
// The primary field may not itself be a coordinate: if the first field is
// one, no primary can be determined and Classify fails.
func Classify(fields []ir.FieldDescriptor) (Classification, error) {
	if len(fields) == 0 {
		return Classification{}, &ConfigurationError{
			Code:    ErrCodeNoFields,
			Message: "at least one field is required",
		}
	}
	if ir.IsCoordinate(fields[0].Tag) {
		return Classification{}, &ConfigurationError{
			Code:    ErrCodeNoPrimary,
			Field:   fields[0].Name,
			Message: "no primary data field could be determined",
		}
	}

	c := Classification{Primary: fields[0]}
	for _, f := range fields[1:] {
		if ir.IsCoordinate(f.Tag) {
			c.Coordinates = append(c.Coordinates, f)
		} else {
			c.Passthrough = append(c.Passthrough, f)
		}
	}
	return c, nil
}

// CoordinateNames returns the coordinate field names in declaration order.
func (c Classification) CoordinateNames() []string {
	names := make([]string, len(c.Coordinates))
	for i, f := range c.Coordinates {
		names[i] = f.Name
	}
	return names
}
