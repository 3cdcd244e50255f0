package model

import "github.com/rotisserie/eris"

// Sentinel errors shared across the store, ingest, and query layers.
// Callers match with eris.Is.
var (
	// ErrEmptyMeasureSet is returned when a store is created with no measures.
	ErrEmptyMeasureSet = eris.New("measure set is empty")

	// ErrDuplicateSimulation is returned when a simulation name is registered twice.
	ErrDuplicateSimulation = eris.New("duplicate simulation name")

	// ErrStationNotFound is returned when a station is unknown to the store.
	ErrStationNotFound = eris.New("station not found")

	// ErrMeasureNotFound is returned when a measure is unknown to the store.
	ErrMeasureNotFound = eris.New("measure not found")

	// ErrTableMismatch is returned when measure tables disagree on which
	// simulations cover a station.
	ErrTableMismatch = eris.New("measure tables disagree on simulation coverage")
)
