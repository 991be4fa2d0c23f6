package cli

import (
	"fmt"

	"github.com/felixgeelhaar/laborboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/laborboard/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/laborboard/pkg/storage"
	"github.com/spf13/cobra"
)

var initDriver string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a board in the current directory",
	Long: `Create the .laborboard directory with a default config.yaml and seed the
dining, lounge and patio revenue centers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		if boardInitialized(root) {
			return MapError(fmt.Errorf("%w in %s", errAlreadyInitialized, root))
		}

		if err := storage.NewFilesystemRepository(root).Initialize(); err != nil {
			return fmt.Errorf("failed to initialize board: %w", err)
		}
		cfg := config.Default()
		if initDriver != "" {
			cfg.Storage.Driver = initDriver
		}
		if err := config.Save(root, cfg); err != nil {
			return MapError(fmt.Errorf("failed to write config: %w", err))
		}

		services, err := wiring.BuildAppServices(root)
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		created, err := services.Labor.SeedCenters()
		if err != nil {
			return fmt.Errorf("failed to seed revenue centers: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized laborboard in %s (%s storage, %d revenue centers)\n",
			root, services.Workspace.Config.Storage.Driver, created)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initDriver, "driver", "", "Storage driver: yaml, memory, buntdb or sqlite")
	RootCmd.AddCommand(initCmd)
}
