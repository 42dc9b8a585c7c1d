package cli

import (
	"fmt"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the resource cache",
	Long: `The cache keeps converted frequency lists, scraped speech type pages and
robots.txt files between runs, on disk or in Redis.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		where, err := clearCache(cfg.Cache)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Cleared %s\n", where)
		return nil
	},
}

// clearCache empties the configured cache and names what was cleared
func clearCache(cfg model.CacheConfig) (string, error) {
	// clearing works on a disabled cache too
	cfg.Enabled = true
	c := cache.New(cfg)
	if err := c.Clear(); err != nil {
		return "", fmt.Errorf("clear cache: %w", err)
	}
	if cfg.RedisAddr != "" {
		return fmt.Sprintf("redis cache %s/%d", cfg.RedisAddr, cfg.RedisDB), nil
	}
	return "cache directory " + cfg.Dir, nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
