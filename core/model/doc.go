// Package model defines the fleet battery-health records exchanged with the
// dataset service and consumed by the filter, aggregate and chart packages.
package model
