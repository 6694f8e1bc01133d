package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/internal/crud"
	"github.com/mesh-intelligence/farmkeeper/internal/form"
	"github.com/mesh-intelligence/farmkeeper/pkg/farmkeeper"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// entityDef describes one collection's command group.
type entityDef[T types.Entity] struct {
	use         string
	short       string
	singular    string
	columns     []string
	spec        form.Spec
	parentField string // empty when the collection has no parent
	photos      bool
	service     func(c *farmkeeper.Client) *crud.Service[T]
}

// validator is implemented by entities with form rules.
type validator interface {
	Validate() error
}

func validate(v any) error {
	if val, ok := v.(validator); ok {
		return val.Validate()
	}
	return nil
}

func newEntityCmd[T types.Entity](a *app, def entityDef[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   def.use,
		Short: def.short,
	}
	cmd.AddCommand(
		newListCmd(a, def),
		newGetCmd(a, def),
		newCreateCmd(a, def),
		newUpdateCmd(a, def),
		newDeleteCmd(a, def),
	)
	return cmd
}

func (def entityDef[T]) open(ctx context.Context, a *app) (*crud.Service[T], error) {
	c, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return def.service(c), nil
}

func (def entityDef[T]) emitList(a *app, cmd *cobra.Command, records []T) error {
	docs := make([]json.RawMessage, len(records))
	for i, r := range records {
		raw, err := types.EncodeRecord(r)
		if err != nil {
			return err
		}
		docs[i] = raw
	}
	return a.emit(cmd.OutOrStdout(), docs, func() (*table, error) {
		return recordTable(def.columns, docs)
	})
}

func (def entityDef[T]) emitOne(a *app, cmd *cobra.Command, record T) error {
	raw, err := types.EncodeRecord(record)
	if err != nil {
		return err
	}
	doc := json.RawMessage(raw)
	return a.emit(cmd.OutOrStdout(), doc, func() (*table, error) {
		return recordTable(def.columns, []json.RawMessage{doc})
	})
}

func newListCmd[T types.Entity](a *app, def entityDef[T]) *cobra.Command {
	var (
		parent int
		where  []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + def.use,
		Long: `List every record in the collection.

Filters are given as --where name=value. Values are parsed as JSON when
possible, so --where completed=false matches the boolean. Multiple filters
are ANDed together.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := def.open(ctx, a)
			if err != nil {
				return err
			}
			filter, err := parseFilter(where)
			if err != nil {
				return err
			}
			parentSet := cmd.Flags().Changed("parent")
			if parentSet && def.parentField == "" {
				return usageErrorf("%s have no parent", def.use)
			}

			var records []T
			switch {
			case parentSet && len(filter) == 0:
				records, err = svc.GetByParentID(ctx, parent)
			case len(filter) > 0:
				if parentSet {
					filter[def.parentField] = parent
				}
				records, err = svc.Fetch(ctx, filter)
			default:
				records, err = svc.GetAll(ctx)
			}
			if err != nil {
				return err
			}
			return def.emitList(a, cmd, records)
		},
	}
	if def.parentField != "" {
		cmd.Flags().IntVar(&parent, "parent", 0, "only records whose "+def.parentField+" matches")
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "filter as name=value (repeatable)")
	return cmd
}

// parseFilter turns name=value pairs into a Fetch filter.
func parseFilter(pairs []string) (map[string]any, error) {
	filter := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, usageErrorf("invalid filter %q (expected name=value)", pair)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		filter[key] = parsed
	}
	return filter, nil
}

func newGetCmd[T types.Entity](a *app, def entityDef[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one " + def.singular,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := def.open(cmd.Context(), a)
			if err != nil {
				return err
			}
			record, err := svc.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return def.emitOne(a, cmd, record)
		},
	}
}

func newCreateCmd[T types.Entity](a *app, def entityDef[T]) *cobra.Command {
	var (
		fieldPairs []string
		photoPaths []string
	)
	cmd := &cobra.Command{
		Use:   "create --field name=value ...",
		Short: "Create a " + def.singular,
		Long:  "Create a " + def.singular + ". Accepted fields: " + joinNames(def.spec) + ".",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fields, err := form.Parse(def.spec, def.singular, fieldPairs)
			if err != nil {
				return err
			}
			if len(photoPaths) > 0 {
				photos, err := readPhotos(def.singular, photoPaths)
				if err != nil {
					return err
				}
				fields["photos"] = photos
			}
			entity, err := form.Decode[T](def.singular, fields)
			if err != nil {
				return err
			}
			if err := validate(entity); err != nil {
				return err
			}

			svc, err := def.open(ctx, a)
			if err != nil {
				return err
			}
			created, err := svc.Create(ctx, entity)
			if err != nil {
				return err
			}
			a.logger.Debug("record created",
				zap.String("collection", svc.Collection()),
				zap.Int("id", created.GetID()))
			return def.emitOne(a, cmd, created)
		},
	}
	cmd.Flags().StringArrayVarP(&fieldPairs, "field", "f", nil, "field assignment name=value (repeatable)")
	if def.photos {
		cmd.Flags().StringArrayVar(&photoPaths, "photo", nil, "image file to attach (repeatable)")
	}
	return cmd
}

func newUpdateCmd[T types.Entity](a *app, def entityDef[T]) *cobra.Command {
	var (
		fieldPairs []string
		photoPaths []string
	)
	cmd := &cobra.Command{
		Use:   "update <id> --field name=value ...",
		Short: "Update a " + def.singular,
		Long:  "Replace the named fields of a " + def.singular + ". Accepted fields: " + joinNames(def.spec) + ".",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := form.Parse(def.spec, def.singular, fieldPairs)
			if err != nil {
				return err
			}

			svc, err := def.open(ctx, a)
			if err != nil {
				return err
			}
			current, err := svc.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if len(photoPaths) > 0 {
				added, err := readPhotos(def.singular, photoPaths)
				if err != nil {
					return err
				}
				photos, err := appendPhotos(current, added)
				if err != nil {
					return err
				}
				fields["photos"] = photos
			}
			merged, err := crud.Merge(current, fields)
			if err != nil {
				return err
			}
			if err := validate(merged); err != nil {
				return err
			}

			updated, err := svc.Update(ctx, id, fields)
			if err != nil {
				return err
			}
			return def.emitOne(a, cmd, updated)
		},
	}
	cmd.Flags().StringArrayVarP(&fieldPairs, "field", "f", nil, "field assignment name=value (repeatable)")
	if def.photos {
		cmd.Flags().StringArrayVar(&photoPaths, "photo", nil, "image file to attach (repeatable)")
	}
	return cmd
}

func newDeleteCmd[T types.Entity](a *app, def entityDef[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + def.singular,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := def.open(cmd.Context(), a)
			if err != nil {
				return err
			}
			if _, err := svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", def.singular, id)
			return nil
		},
	}
}

func joinNames(spec form.Spec) string { return strings.Join(spec.Names(), ", ") }

// readPhotos loads image files as photo attachments. The content type is
// sniffed from the bytes.
func readPhotos(entity string, paths []string) ([]types.Photo, error) {
	now := time.Now()
	photos := make([]types.Photo, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, usageErrorf("photo %s: %v", p, err)
		}
		if info.Size() > types.MaxPhotoBytes {
			verr := types.NewValidationError(entity)
			verr.Add("photos", filepath.Base(p)+": larger than 5MB")
			return nil, verr
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read photo %s: %w", p, err)
		}
		photos = append(photos, types.NewPhoto(filepath.Base(p), http.DetectContentType(data), data, now))
	}
	return photos, nil
}

// appendPhotos returns the stored photos of record followed by added.
func appendPhotos(record any, added []types.Photo) ([]types.Photo, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var existing struct {
		Photos []types.Photo `json:"photos"`
	}
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, err
	}
	return append(existing.Photos, added...), nil
}

var farmsDef = entityDef[*types.Farm]{
	use:      "farms",
	short:    "Manage farms",
	singular: "farm",
	columns:  []string{"Id", "name", "location", "size", "unit", "createdAt"},
	spec:     form.FarmSpec,
	service:  func(c *farmkeeper.Client) *crud.Service[*types.Farm] { return c.Farms },
}

var cropsDef = entityDef[*types.Crop]{
	use:         "crops",
	short:       "Manage crops",
	singular:    "crop",
	columns:     []string{"Id", "farmId", "name", "field", "plantingDate", "expectedHarvest", "status", "photos"},
	spec:        form.CropSpec,
	parentField: types.FieldFarmID,
	photos:      true,
	service:     func(c *farmkeeper.Client) *crud.Service[*types.Crop] { return c.Crops },
}

var tasksDef = entityDef[*types.Task]{
	use:         "tasks",
	short:       "Manage tasks",
	singular:    "task",
	columns:     []string{"Id", "farmId", "cropId", "title", "type", "dueDate", "priority", "completed"},
	spec:        form.TaskSpec,
	parentField: types.FieldFarmID,
	service:     func(c *farmkeeper.Client) *crud.Service[*types.Task] { return c.Tasks },
}

var expensesDef = entityDef[*types.Expense]{
	use:         "expenses",
	short:       "Manage expenses",
	singular:    "expense",
	columns:     []string{"Id", "farmId", "date", "category", "amount", "vendor", "description", "photos"},
	spec:        form.ExpenseSpec,
	parentField: types.FieldFarmID,
	photos:      true,
	service:     func(c *farmkeeper.Client) *crud.Service[*types.Expense] { return c.Expenses },
}

var templatesDef = entityDef[*types.TaskTemplate]{
	use:      "templates",
	short:    "Manage task templates",
	singular: "template",
	columns:  []string{"Id", "name", "title", "type", "priority"},
	spec:     form.TemplateSpec,
	service:  func(c *farmkeeper.Client) *crud.Service[*types.TaskTemplate] { return c.Templates },
}

func newFarmsCmd(a *app) *cobra.Command    { return newEntityCmd(a, farmsDef) }
func newCropsCmd(a *app) *cobra.Command    { return newEntityCmd(a, cropsDef) }
func newTasksCmd(a *app) *cobra.Command    { return newEntityCmd(a, tasksDef) }
func newExpensesCmd(a *app) *cobra.Command { return newEntityCmd(a, expensesDef) }

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := newEntityCmd(a, templatesDef)
	cmd.AddCommand(newApplyTemplateCmd(a))
	return cmd
}

func newApplyTemplateCmd(a *app) *cobra.Command {
	var (
		farmID int
		cropID int
		due    string
	)
	cmd := &cobra.Command{
		Use:   "apply <templateId> --farm N --due YYYY-MM-DD",
		Short: "Create a task from a template",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var crop *int
			if cmd.Flags().Changed("crop") {
				crop = &cropID
			}
			c, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			task, err := c.ApplyTemplate(cmd.Context(), templateID, farmID, crop, due)
			if err != nil {
				return err
			}
			return tasksDef.emitOne(a, cmd, task)
		},
	}
	cmd.Flags().IntVar(&farmID, "farm", 0, "farm the task belongs to")
	cmd.Flags().IntVar(&cropID, "crop", 0, "crop the task belongs to")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("farm")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}
