package model

// Inputs is everything one portfolio simulation consumes: the price histories
// of its instruments (index-aligned with the allocation slices) and the
// configuration. The first instrument drives the anchor dates.
type Inputs struct {
	Instruments []Instrument
	Config      SimulationConfig
}
