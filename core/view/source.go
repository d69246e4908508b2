package view

import (
	"context"

	"github.com/kilianp07/fleethealth/core/model"
)

// Source fetches fleet data from the dataset service. Errors should wrap
// fault.ErrNetwork or fault.ErrMalformed.
type Source interface {
	Stats(ctx context.Context, q model.StatsQuery) (model.Stats, error)
	VehicleDetail(ctx context.Context, id string) (model.VehicleDetail, error)
}
