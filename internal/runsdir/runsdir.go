// Package runsdir knows the directory conventions of a simulation run tree:
// where realisation outputs, source definitions, and IM results live
// relative to the tree root.
package runsdir

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IMCalcGlob matches one IM results CSV per realisation under a runs
// directory: <runs>/<fault>/IM_calc/<realisation>/<realisation>.csv.
func IMCalcGlob(runsDir string) string {
	return filepath.Join(runsDir, "*", "IM_calc", "*", "*.csv")
}

// SimulationName derives the simulation name from an IM CSV path: the base
// filename without its extension.
func SimulationName(csvPath string) string {
	base := filepath.Base(csvPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FaultFromRealisation strips the hypocentre/realisation suffix from a
// realisation name, leaving the fault name.
func FaultFromRealisation(realisation string) string {
	if i := strings.Index(realisation, "_HYP"); i >= 0 {
		return realisation[:i]
	}
	return strings.SplitN(realisation, "_", 2)[0]
}

// RealisationName formats a fault/realisation pair, e.g. "Albury_REL01".
func RealisationName(fault string, rel int) string {
	return fmt.Sprintf("%s_REL%02d", fault, rel)
}

// RunsDir returns the Runs directory of a simulation tree root.
func RunsDir(root string) string {
	return filepath.Join(root, "Runs")
}

// SourcesDir returns the source-definition directory of a tree root.
func SourcesDir(root string) string {
	return filepath.Join(root, "Data", "Sources")
}

// VMDir returns the velocity-model directory for a realisation's fault.
func VMDir(root, realisation string) string {
	return filepath.Join(root, "Data", "VMs", FaultFromRealisation(realisation))
}

// SRFPath returns the source rupture file of a realisation.
func SRFPath(root, realisation string) string {
	fault := FaultFromRealisation(realisation)
	return filepath.Join(SourcesDir(root), fault, "Srf", realisation+".srf")
}

// SourceParamsPath returns the per-realisation simulation parameter file.
func SourceParamsPath(root, realisation string) string {
	fault := FaultFromRealisation(realisation)
	return filepath.Join(SourcesDir(root), fault, "Sim_params", realisation+".yaml")
}

// StochPath returns the stochastic slip file of a realisation.
func StochPath(root, realisation string) string {
	fault := FaultFromRealisation(realisation)
	return filepath.Join(SourcesDir(root), fault, "Stoch", realisation+".stoch")
}

// FaultParamsPath returns the per-fault parameter file under a sim root.
func FaultParamsPath(simRoot, fault string) string {
	return filepath.Join(simRoot, fault, "fault_params.yaml")
}

// RootParamsPath returns the tree-wide parameter file under a sim root.
func RootParamsPath(simRoot string) string {
	return filepath.Join(simRoot, "root_params.yaml")
}
