package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/tide/internal/config"
)

// InitCmd returns the init command that writes .tide/config.json.
func InitCmd() *cobra.Command {
	var userID string
	var tz string
	var dataDir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize tide configuration in the current directory",
		Long: `Creates .tide/config.json with the user identity and storage
location. Safe to re-run; an existing config is left untouched unless
--force is given.

Examples:
  tide init
  tide init --timezone America/New_York
  tide init --user alice --data-dir /var/lib/tide`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			if existing, err := config.LoadConfig(cwd); err == nil && !force {
				fmt.Printf("Config already exists for user %s (use --force to overwrite)\n", existing.UserID)
				return nil
			}

			if userID == "" {
				userID = uuid.NewString()
			}
			if tz != "" {
				if _, err := time.LoadLocation(tz); err != nil {
					return fmt.Errorf("invalid timezone %q: %w", tz, err)
				}
			}

			cfg := &config.Config{
				Version:  "1",
				UserID:   userID,
				DataDir:  dataDir,
				Timezone: tz,
			}
			if err := config.SaveConfig(cwd, cfg); err != nil {
				return err
			}

			fmt.Printf("✓ Initialized tide config for user %s\n", cfg.UserID)
			if tz != "" {
				fmt.Printf("  Timezone: %s\n", tz)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (generated when omitted)")
	cmd.Flags().StringVar(&tz, "timezone", "", "IANA timezone name (defaults to UTC)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (defaults to ~/.tide)")
	cmd.Flags().Bool("force", false, "Overwrite an existing config")

	return cmd
}
