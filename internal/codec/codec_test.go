package codec

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/farmkeeper/internal/store/memory"
	"github.com/mesh-intelligence/farmkeeper/internal/store/mocks"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

func farm(id int, name string) *types.Farm {
	f := &types.Farm{Name: name, Location: "Iowa", Size: 10, Unit: types.UnitAcres}
	f.ID = id
	f.CreatedAt = time.Date(2024, 3, id, 0, 0, 0, 0, time.UTC)
	return f
}

func TestCodec_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New[*types.Farm](memory.New(), nil)

	want := []*types.Farm{farm(1, "North Field"), farm(2, "South Field")}
	require.NoError(t, c.Save(ctx, types.FarmsCollection, want))

	got, err := c.Load(ctx, types.FarmsCollection)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_MissingSlot(t *testing.T) {
	c := New[*types.Farm](memory.New(), nil)

	got, err := c.Load(context.Background(), "missing_slot")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCodec_EmptyAndMalformedSlots(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantWarn bool
	}{
		{"empty", "", false},
		{"whitespace", "  \n", false},
		{"empty array", "[]", false},
		{"truncated", `[{"Id":1,"name":`, true},
		{"object not array", `{"Id":1}`, true},
		{"garbage", "not json", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()
			require.NoError(t, store.Save(ctx, "farms", []byte(tt.content)))

			core, logs := observer.New(zapcore.WarnLevel)
			c := New[*types.Farm](store, zap.New(core))

			got, err := c.Load(ctx, "farms")
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.Equal(t, tt.wantWarn, logs.FilterMessage("malformed slot treated as empty").Len() == 1)
		})
	}
}

func TestCodec_SkipsBadElements(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	content := `[{"Id":1,"name":"A"},null,{"Id":"two","name":"B"},{"Id":3,"name":"C"}]`
	require.NoError(t, store.Save(ctx, "farms", []byte(content)))

	core, logs := observer.New(zapcore.WarnLevel)
	c := New[*types.Farm](store, zap.New(core))

	got, err := c.Load(ctx, "farms")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)

	assert.Equal(t, 1, logs.FilterMessage("null record skipped").Len())
	skipped := logs.FilterMessage("undecodable record skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(2), skipped[0].ContextMap()["index"])
}

func TestCodec_SaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := New[*types.Farm](store, nil)

	require.NoError(t, c.Save(ctx, "farms", nil))
	raw, err := store.Load(ctx, "farms")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestCodec_StoreFailures(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk on fire")

	store := &mocks.Store{}
	store.On("Load", mock.Anything, "crops").Return(nil, cause)
	store.On("Save", mock.Anything, "crops", mock.Anything).Return(types.ErrQuotaExceeded)

	c := New[*types.Crop](store, nil)

	_, err := c.Load(ctx, "crops")
	require.ErrorIs(t, err, types.ErrPersistence)
	require.ErrorIs(t, err, cause)
	var pe *types.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "load", pe.Op)
	assert.Equal(t, "crops", pe.Collection)

	err = c.Save(ctx, "crops", []*types.Crop{{Name: "Corn"}})
	require.ErrorIs(t, err, types.ErrPersistence)
	require.ErrorIs(t, err, types.ErrQuotaExceeded)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "save", pe.Op)

	store.AssertExpectations(t)
}

func TestCodec_KeepsUndeclaredFieldsPerRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Save(ctx, types.FarmsCollection,
		[]byte(`[{"Id":1,"name":"A","size":1,"owner":"kim"},{"Id":2,"name":"B","size":2}]`)))
	c := New[*types.Farm](store, nil)

	got, err := c.Load(ctx, types.FarmsCollection)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `"kim"`, string(got[0].Extras()["owner"]))
	assert.Nil(t, got[1].Extras())

	require.NoError(t, c.Save(ctx, types.FarmsCollection, got))
	raw, err := store.Load(ctx, types.FarmsCollection)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Id":1,"name":"A","size":1,"owner":"kim"},{"Id":2,"name":"B","size":2}]`, string(raw))
	assert.NotContains(t, string(raw), "0001-01-01", "a missing createdAt stays missing")
}
