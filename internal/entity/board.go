package entity

// BoardConfig is the immutable cell layout of a single game. Together with
// the three fixed cells (start, jail, go-to-jail) its indices partition the
// 16-cell board. It is created once at game creation and never mutated.
type BoardConfig struct {
	IncomeTaxIndex  int   `json:"income_tax_index"`
	PropertyIndices []int `json:"property_indices"`
	PortIndices     []int `json:"port_indices"`
}

// PropertyPosition returns the position of idx in the property list, or -1
// if idx is not a property. A property's price depends on this position.
func (that *BoardConfig) PropertyPosition(idx int) int {
	for pos, propertyIdx := range that.PropertyIndices {
		if propertyIdx == idx {
			return pos
		}
	}

	return -1
}

func (that *BoardConfig) IsProperty(idx int) bool {
	return that.PropertyPosition(idx) >= 0
}

func (that *BoardConfig) IsPort(idx int) bool {
	for _, portIdx := range that.PortIndices {
		if portIdx == idx {
			return true
		}
	}

	return false
}
