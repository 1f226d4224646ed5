package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/resourcemeta/internal/cli/config"
	"github.com/conduit-lang/resourcemeta/internal/cli/ui"
)

// newCacheCommand creates the 'cache' command
func newCacheCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the shared metadata cache",
		Long: `Inspect or clear the shared metadata cache.

Resolved collections are cached under a key made of the class name and the
schema version of the database catalog. These commands are only useful with the
redis driver, since the memory cache lives as long as a single command.`,
	}

	cmd.AddCommand(newCacheStatusCommand(opts))
	cmd.AddCommand(newCacheClearCommand(opts))

	return cmd
}

func newCacheStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [class...]",
		Short: "Show which classes are cached",
		Example: `  # Show every declared class
  resourcemeta cache status

  # Show some classes
  resourcemeta cache status Book Author`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.close()

			if a.config.Cache.Driver == config.CacheNone {
				ui.Info("Caching is disabled (cache.driver: none).").Write(cmd.OutOrStdout(), opts.noColor)
				return nil
			}

			classes := args
			if len(classes) == 0 {
				classes = a.pipeline.Classes()
			}

			table := ui.NewTable(cmd.OutOrStdout(), []string{"CLASS", "CACHED"}, &ui.TableOptions{NoColor: opts.noColor})
			for _, class := range classes {
				cached, err := a.pipeline.Cached(cmd.Context(), class)
				if err != nil {
					return fmt.Errorf("failed to read cache for %s: %w", class, err)
				}
				state := "no"
				if cached {
					state = "yes"
				}
				table.AddRow(class, state)
			}
			table.Render()
			return nil
		},
	}
}

func newCacheClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [class...]",
		Short: "Drop cached collections",
		Long: `Drop cached collections.

Without arguments every entry under the resourcemeta key prefix is removed,
whatever its schema version. With class names only the entries of those classes
at the current schema version are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if err := a.pipeline.Purge(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				ui.Success("Cleared the metadata cache").Write(out, opts.noColor)
				return nil
			}

			for _, class := range args {
				if err := a.pipeline.Invalidate(cmd.Context(), class); err != nil {
					return fmt.Errorf("failed to clear cache for %s: %w", class, err)
				}
			}
			ui.Success(fmt.Sprintf("Cleared %d cached class(es)", len(args))).Write(out, opts.noColor)
			return nil
		},
	}
}
