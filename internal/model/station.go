// Package model holds the core entities of the intensity-measure database:
// stations, simulations, and the per-station result table.
package model

// Station is a fixed geographic observation point. ID is assigned by the
// store in first-seen order during a build and never changes afterwards.
type Station struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Lon  float64 `json:"longitude"`
	Lat  float64 `json:"latitude"`
}

// StationDistance pairs a station with a computed great-circle distance.
type StationDistance struct {
	Station
	Dist float64 `json:"dist_km"`
}

// Simulation is one ingested run, named after its source file.
type Simulation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ValueRow is one measurement destined for a measure's value table.
type ValueRow struct {
	StationID    int64
	SimulationID int64
	Value        float64
}
