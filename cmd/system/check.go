package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/novadent/novadent_backend/config"
	redispkg "github.com/novadent/novadent_backend/pkg/redis"
	"github.com/novadent/novadent_backend/pkg/store"
)

// NewCheckCommand probes the external collaborators the API depends on.
// Useful on a fresh deployment before pointing traffic at the server.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify connectivity to the store and Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			st, err := store.New(store.Config{
				URL:     cfg.Store.URL,
				AnonKey: cfg.Store.AnonKey,
				Timeout: time.Duration(cfg.Store.TimeoutSeconds) * time.Second,
			})
			if err != nil {
				return err
			}
			if err := st.Health(ctx); err != nil {
				return fmt.Errorf("store unreachable: %w", err)
			}
			fmt.Println("store: ok")

			rdb, err := redispkg.New(cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis unreachable: %w", err)
			}
			defer rdb.Close()
			fmt.Println("redis: ok")

			return nil
		},
	}

	return cmd
}
