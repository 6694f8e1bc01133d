package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/farmkeeper/internal/store/memory"
	"github.com/mesh-intelligence/farmkeeper/internal/store/mocks"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

func TestStore_CountsOperations(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s := NewStore(memory.New(), reg)

	_, err := s.Load(ctx, "farms")
	require.ErrorIs(t, err, types.ErrSlotNotFound)

	require.NoError(t, s.Save(ctx, "farms", []byte(`[{"Id":1}]`)))
	_, err = s.Load(ctx, "farms")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Ops.WithLabelValues("load", "farms", ResultMissing)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Ops.WithLabelValues("load", "farms", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Ops.WithLabelValues("save", "farms", ResultOK)))
	assert.Equal(t, 10.0, testutil.ToFloat64(s.SlotBytes.WithLabelValues("farms")))

	assert.Equal(t, 2, testutil.CollectAndCount(s.Duration), "one histogram per op")
	n, err := testutil.GatherAndCount(reg, "farmkeeper_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_CountsErrors(t *testing.T) {
	ctx := context.Background()
	next := &mocks.Store{}
	next.On("Load", mock.Anything, "crops").Return(nil, errors.New("boom"))
	next.On("Save", mock.Anything, "crops", mock.Anything).Return(types.ErrQuotaExceeded)

	s := NewStore(next, nil)

	_, err := s.Load(ctx, "crops")
	require.Error(t, err)
	err = s.Save(ctx, "crops", []byte("[]"))
	require.ErrorIs(t, err, types.ErrQuotaExceeded)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Ops.WithLabelValues("load", "crops", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Ops.WithLabelValues("save", "crops", ResultError)))
	assert.Equal(t, 0, testutil.CollectAndCount(s.SlotBytes))
}

type closingStore struct {
	*memory.Store
	closed bool
}

func (c *closingStore) Close() error {
	c.closed = true
	return nil
}

func TestStore_Close(t *testing.T) {
	inner := &closingStore{Store: memory.New()}
	require.NoError(t, NewStore(inner, nil).Close())
	assert.True(t, inner.closed)

	assert.NoError(t, NewStore(&mocks.Store{}, nil).Close(), "stores without Close are fine")
}
