package view

import (
	"github.com/kilianp07/fleethealth/core/chart"
	"github.com/kilianp07/fleethealth/core/model"
)

// Action is a user intent dispatched to the Controller.
type Action interface {
	action()
}

// SelectGrade restricts the fleet to one grade, or "all".
type SelectGrade struct{ Grade string }

// SetCarType restricts the fleet to one car type, or "all".
type SetCarType struct{ CarType string }

// SetFilters changes grade and car type in a single event.
type SetFilters struct {
	Grade   string
	CarType string
}

// SetSearch updates the free text search.
type SetSearch struct{ Text string }

// SelectVehicle opens the detail view for a vehicle.
type SelectVehicle struct{ ID string }

// DismissDetail closes the detail view.
type DismissDetail struct{}

// BackdropClick is a click at At while the detail view is open. Clicks
// outside the detail content bounds close it.
type BackdropClick struct{ At chart.Point }

// Refresh reloads the fleet snapshot.
type Refresh struct{}

func (SelectGrade) action()   {}
func (SetCarType) action()    {}
func (SetFilters) action()    {}
func (SetSearch) action()     {}
func (SelectVehicle) action() {}
func (DismissDetail) action() {}
func (BackdropClick) action() {}
func (Refresh) action()       {}

// completions posted back by fetch goroutines

type snapshotLoaded struct {
	token uint64
	stats model.Stats
	err   error
}

type scoreLoaded struct {
	token uint64
	query model.StatsQuery
	stats model.Stats
	err   error
}

type detailLoaded struct {
	token  uint64
	id     string
	detail model.VehicleDetail
	err    error
}
