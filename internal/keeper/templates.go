package keeper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// ApplyTemplate creates a task on farmID from the template. cropID is
// optional; when set, the crop must belong to the farm. The farm, crop, and
// template must exist.
func (k *Keeper) ApplyTemplate(ctx context.Context, templateID, farmID int, cropID *int, dueDate string) (*types.Task, error) {
	tpl, err := k.Templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	if _, err := k.Farms.GetByID(ctx, farmID); err != nil {
		return nil, fmt.Errorf("farm: %w", err)
	}
	if cropID != nil {
		crop, err := k.Crops.GetByID(ctx, *cropID)
		if err != nil {
			return nil, fmt.Errorf("crop: %w", err)
		}
		if crop.FarmID != farmID {
			verr := types.NewValidationError("task")
			verr.Add(types.FieldCropID, fmt.Sprintf("crop %d belongs to farm %d", crop.ID, crop.FarmID))
			return nil, verr
		}
	}

	task := &types.Task{
		FarmID:   farmID,
		CropID:   cropID,
		Title:    tpl.TaskTitle(),
		Type:     tpl.Type,
		DueDate:  dueDate,
		Priority: tpl.Priority,
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	created, err := k.Tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	k.logger.Debug("template applied",
		zap.Int("template", templateID),
		zap.Int("farm", farmID),
		zap.Int("task", created.ID))
	return created, nil
}
