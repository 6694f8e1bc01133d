package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/farmkeeper/internal/crud"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// CollectionStats describes one collection as stored.
type CollectionStats struct {
	Collection string  `json:"collection" yaml:"collection"`
	Records    int     `json:"records" yaml:"records"`
	NextID     int     `json:"nextId" yaml:"nextId"`
	Bytes      float64 `json:"bytes" yaml:"bytes"`
}

const slotBytesMetric = "farmkeeper_store_slot_bytes"

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and stored size per collection",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.open(ctx)
			if err != nil {
				return err
			}
			var stats []CollectionStats
			for _, collect := range []func(context.Context) (CollectionStats, error){
				func(ctx context.Context) (CollectionStats, error) { return collectionStats(ctx, c.Farms) },
				func(ctx context.Context) (CollectionStats, error) { return collectionStats(ctx, c.Crops) },
				func(ctx context.Context) (CollectionStats, error) { return collectionStats(ctx, c.Tasks) },
				func(ctx context.Context) (CollectionStats, error) { return collectionStats(ctx, c.Expenses) },
				func(ctx context.Context) (CollectionStats, error) { return collectionStats(ctx, c.Templates) },
			} {
				st, err := collect(ctx)
				if err != nil {
					return err
				}
				stats = append(stats, st)
			}

			sizes, err := a.slotBytes()
			if err != nil {
				return err
			}
			for i := range stats {
				stats[i].Bytes = sizes[stats[i].Collection]
			}

			return a.emit(cmd.OutOrStdout(), stats, func() (*table, error) {
				t := &table{headers: []string{"Collection", "Records", "Next Id", "Bytes"}}
				for _, st := range stats {
					t.add(st.Collection, strconv.Itoa(st.Records), strconv.Itoa(st.NextID),
						strconv.FormatFloat(st.Bytes, 'f', 0, 64))
				}
				return t, nil
			})
		},
	}
}

func collectionStats[T types.Entity](ctx context.Context, svc *crud.Service[T]) (CollectionStats, error) {
	records, err := svc.GetAll(ctx)
	if err != nil {
		return CollectionStats{}, err
	}
	return CollectionStats{
		Collection: svc.Collection(),
		Records:    len(records),
		NextID:     crud.NextID(records),
	}, nil
}

// slotBytes reads the last observed payload size per slot from the
// storage metrics.
func (a *app) slotBytes() (map[string]float64, error) {
	families, err := a.registry.Gather()
	if err != nil {
		return nil, err
	}
	sizes := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != slotBytesMetric {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "slot" {
					sizes[l.GetValue()] = m.GetGauge().GetValue()
				}
			}
		}
	}
	return sizes, nil
}
