// Package keeper wires one store into the five farm collection services.
package keeper

import (
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/internal/crud"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Options configures a Keeper.
type Options struct {
	Logger *zap.Logger

	// Latency applies crud.NetworkLatency to every service call.
	Latency bool

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Keeper holds the services for every collection. All services share one
// store and one lock registry.
type Keeper struct {
	Farms     *crud.Service[*types.Farm]
	Crops     *crud.Service[*types.Crop]
	Tasks     *crud.Service[*types.Task]
	Expenses  *crud.Service[*types.Expense]
	Templates *crud.Service[*types.TaskTemplate]

	logger *zap.Logger
	now    func() time.Time
}

// New builds a Keeper over store.
func New(store types.Store, opts Options) *Keeper {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	var latency crud.Latency
	if opts.Latency {
		latency = crud.NetworkLatency
	}
	svcOpts := []crud.Option{
		crud.WithLocks(crud.NewLocks()),
		crud.WithLogger(opts.Logger),
		crud.WithClock(opts.Clock),
	}
	return &Keeper{
		Farms:     crud.NewService[*types.Farm](store, crud.FarmSchema.WithLatency(latency), svcOpts...),
		Crops:     crud.NewService[*types.Crop](store, crud.CropSchema.WithLatency(latency), svcOpts...),
		Tasks:     crud.NewService[*types.Task](store, crud.TaskSchema.WithLatency(latency), svcOpts...),
		Expenses:  crud.NewService[*types.Expense](store, crud.ExpenseSchema.WithLatency(latency), svcOpts...),
		Templates: crud.NewService[*types.TaskTemplate](store, crud.TemplateSchema.WithLatency(latency), svcOpts...),
		logger:    opts.Logger,
		now:       opts.Clock,
	}
}

// Today returns the current calendar date from the keeper's clock.
func (k *Keeper) Today() time.Time { return truncateDay(k.now()) }
