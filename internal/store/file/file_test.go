package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	_, err = s.Load(ctx, "farms")
	require.ErrorIs(t, err, types.ErrSlotNotFound)

	require.NoError(t, s.Save(ctx, "farms", []byte(`[{"Id":1}]`)))
	got, err := s.Load(ctx, "farms")
	require.NoError(t, err)
	assert.Equal(t, `[{"Id":1}]`, string(got))

	onDisk, err := os.ReadFile(filepath.Join(dir, "farms.json"))
	require.NoError(t, err)
	assert.Equal(t, `[{"Id":1}]`, string(onDisk))
}

func TestStore_SaveOverwritesAndLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "tasks", []byte(`[{"Id":1},{"Id":2}]`)))
	require.NoError(t, s.Save(ctx, "tasks", []byte(`[]`)))

	got, err := s.Load(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}

func TestStore_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := Open(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_EmptyDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_RejectsUnsafeSlotNames(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	for _, slot := range []string{"", "..", "../etc/passwd", "a/b", ".hidden", `a\b`} {
		t.Run(slot, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(ctx, slot, []byte("[]")), types.ErrInvalidSlot)
			_, err := s.Load(ctx, slot)
			assert.ErrorIs(t, err, types.ErrInvalidSlot)
		})
	}
}

func TestStore_Slots(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "task_templates", []byte("[]")))
	require.NoError(t, s.Save(ctx, "crops", []byte("[]")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	got, err := s.Slots()
	require.NoError(t, err)
	assert.Equal(t, []string{"crops", "task_templates"}, got)
}

func TestStore_UnreadableSlotIsNotMissing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "crops.json"), 0o755))
	_, err = s.Load(ctx, "crops")
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrSlotNotFound)
}
