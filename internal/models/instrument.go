package models

// Instrument is an ordered set of item definitions loaded from one source.
//
// YAML structure:
//
//	instrument:
//	  name: M-CHAT-R/F Follow-Up
//	  version: "2009"
//	  items:
//	    - id: 1
//	      question: ...
type Instrument struct {
	Name    string            `yaml:"name" json:"name"`
	Version string            `yaml:"version,omitempty" json:"version,omitempty"`
	Items   []*ItemDefinition `yaml:"items" json:"items"`

	// Source is the file the instrument was loaded from, empty for built-ins.
	Source string `yaml:"-" json:"-"`
}

// Item looks up a definition by id.
func (in *Instrument) Item(id int) (*ItemDefinition, bool) {
	for _, def := range in.Items {
		if def.ID == id {
			return def, true
		}
	}
	return nil, false
}

// IDs returns the item ids in authored order.
func (in *Instrument) IDs() []int {
	ids := make([]int, len(in.Items))
	for i, def := range in.Items {
		ids[i] = def.ID
	}
	return ids
}
