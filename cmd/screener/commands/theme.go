package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/kscreener/pkg/config"
	"github.com/wonny/kscreener/pkg/theme"
)

// themeCmd represents the theme command
var themeCmd = &cobra.Command{
	Use:   "theme [light|dark|toggle]",
	Short: "테마 설정 조회/변경",
	Long: `대시보드 테마를 조회하거나 변경합니다. 인자가 없으면 현재 값을 표시합니다.

Example:
  go run ./cmd/screener theme
  go run ./cmd/screener theme dark
  go run ./cmd/screener theme toggle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := theme.NewStore(cfg.ThemeDir)
	if err != nil {
		return fmt.Errorf("initialize theme store: %w", err)
	}

	if len(args) == 0 {
		fmt.Printf("현재 테마: %s\n", store.Current())
		return nil
	}

	switch args[0] {
	case "toggle":
		next, err := store.Toggle()
		if err != nil {
			return err
		}
		fmt.Printf("테마 변경: %s\n", next)
	default:
		if err := store.Set(theme.Theme(args[0])); err != nil {
			return err
		}
		fmt.Printf("테마 변경: %s\n", store.Current())
	}

	return nil
}
