package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

func TestStore_LoadMissingSlot(t *testing.T) {
	s := New()
	_, err := s.Load(context.Background(), "farms")
	assert.ErrorIs(t, err, types.ErrSlotNotFound)
}

func TestStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Save(ctx, "farms", []byte(`[{"Id":1}]`)))
	got, err := s.Load(ctx, "farms")
	require.NoError(t, err)
	assert.Equal(t, `[{"Id":1}]`, string(got))

	require.NoError(t, s.Save(ctx, "farms", []byte(`[]`)))
	got, err = s.Load(ctx, "farms")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "save overwrites the whole slot")
}

func TestStore_CopiesBytes(t *testing.T) {
	ctx := context.Background()
	s := New()

	data := []byte(`[1]`)
	require.NoError(t, s.Save(ctx, "crops", data))
	data[1] = '9'

	got, err := s.Load(ctx, "crops")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	got[1] = '7'
	again, err := s.Load(ctx, "crops")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(again))
}

func TestStore_Quota(t *testing.T) {
	ctx := context.Background()
	s := New(WithQuota(10))

	require.NoError(t, s.Save(ctx, "a", []byte("12345")))
	require.NoError(t, s.Save(ctx, "a", []byte("1234567890")), "rewriting a slot only counts the new size")

	err := s.Save(ctx, "b", []byte("x"))
	require.ErrorIs(t, err, types.ErrQuotaExceeded)

	_, err = s.Load(ctx, "b")
	assert.ErrorIs(t, err, types.ErrSlotNotFound, "rejected save must not create the slot")
	assert.Equal(t, []string{"a"}, s.Slots())
}
