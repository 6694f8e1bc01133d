package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize farmkeeper storage",
		Long: `Create the configuration directory and config.yaml, open the configured
backend, and write an empty collection for every slot that does not exist
yet. Existing records are left untouched.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.open(ctx)
			if err != nil {
				return err
			}
			store := c.Store()
			for _, slot := range types.StandardCollections {
				_, err := store.Load(ctx, slot)
				if err == nil {
					continue
				}
				if !errors.Is(err, types.ErrSlotNotFound) {
					return &types.PersistenceError{Op: "load", Collection: slot, Err: err}
				}
				if err := store.Save(ctx, slot, []byte("[]")); err != nil {
					return &types.PersistenceError{Op: "save", Collection: slot, Err: err}
				}
				a.logger.Debug("collection created", zap.String("collection", slot))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "farmkeeper initialized (%s backend)\n", a.cfg.Backend)
			return nil
		},
	}
}
