// Package simulator builds a synthetic distribution grid and load history for
// demonstrations and local runs.
package simulator

import (
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/topology"
)

// highRiskUnits carry an elevated load profile so the demo grid always
// produces at least one overload with a viable transfer target.
var highRiskUnits = map[string]bool{"T-07": true, "T-04": true}

// BuildGrid populates a fresh in-memory graph with ten transformers, six tie
// switches and eight tie links. T-07 is wired to T-09 through SW-03 so an
// overload on it has a neighbor with headroom.
func BuildGrid() *topology.MemoryGraph {
	g := topology.NewMemoryGraph()

	units := []model.Transformer{
		{ID: "T-01", Name: "T-01", RatedKVA: 500, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2015, Active: true},
		{ID: "T-02", Name: "T-02", RatedKVA: 630, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2018, Active: true},
		{ID: "T-03", Name: "T-03", RatedKVA: 500, MaxLoadPct: 90, Cooling: model.CoolingONAF, InstallYear: 2020, Active: true},
		{ID: "T-04", Name: "T-04", RatedKVA: 800, MaxLoadPct: 90, Cooling: model.CoolingONAF, InstallYear: 2019, Active: true},
		{ID: "T-05", Name: "T-05", RatedKVA: 500, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2016, Active: true},
		{ID: "T-06", Name: "T-06", RatedKVA: 630, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2021, Active: true},
		{ID: "T-07", Name: "T-07", RatedKVA: 500, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2017, Active: true},
		{ID: "T-08", Name: "T-08", RatedKVA: 400, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2014, Active: true},
		{ID: "T-09", Name: "T-09", RatedKVA: 630, MaxLoadPct: 90, Cooling: model.CoolingONAF, InstallYear: 2022, Active: true},
		{ID: "T-10", Name: "T-10", RatedKVA: 500, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2019, Active: true},
	}
	for _, u := range units {
		g.AddUnit(u)
	}

	switches := []model.Switch{
		{Name: "SW-01", Type: model.SwitchNormallyOpen, Location: "Near T-01/T-02 junction", Status: model.SwitchOpen},
		{Name: "SW-02", Type: model.SwitchNormallyOpen, Location: "Near T-02/T-04 tie", Status: model.SwitchOpen},
		{Name: "SW-03", Type: model.SwitchNormallyOpen, Location: "Near T-07/T-09 tie", Status: model.SwitchOpen},
		{Name: "SW-04", Type: model.SwitchNormallyOpen, Location: "Near T-05/T-08 tie", Status: model.SwitchOpen},
		{Name: "SW-05", Type: model.SwitchNormallyClosed, Location: "FDR-C main", Status: model.SwitchClosed},
		{Name: "SW-06", Type: model.SwitchNormallyOpen, Location: "Near T-09/T-10 tie", Status: model.SwitchOpen},
	}
	for _, sw := range switches {
		g.AddSwitch(sw)
	}

	links := []model.Link{
		{FromUnit: "T-01", ToUnit: "T-02", MaxTransferKW: 200, SwitchName: "SW-01", Active: true},
		{FromUnit: "T-02", ToUnit: "T-04", MaxTransferKW: 250, SwitchName: "SW-02", Active: true},
		{FromUnit: "T-03", ToUnit: "T-05", MaxTransferKW: 180, Active: true},
		{FromUnit: "T-05", ToUnit: "T-06", MaxTransferKW: 220, Active: true},
		{FromUnit: "T-07", ToUnit: "T-09", MaxTransferKW: 300, SwitchName: "SW-03", Active: true},
		{FromUnit: "T-05", ToUnit: "T-08", MaxTransferKW: 150, SwitchName: "SW-04", Active: true},
		{FromUnit: "T-09", ToUnit: "T-10", MaxTransferKW: 200, SwitchName: "SW-06", Active: true},
		{FromUnit: "T-04", ToUnit: "T-07", MaxTransferKW: 280, Active: true},
	}
	for _, l := range links {
		g.AddLink(l)
	}

	return g
}
