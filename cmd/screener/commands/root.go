package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "KOSPI/KOSDAQ 거래대금 상위 종목 스크리너",
	Long: `KScreener CLI

거래대금 상위 종목 조회와 리스크 기반 포지션 사이징.
한 번 조회(top), 실시간 감시(watch), 대시보드 서버(serve)를 제공합니다.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener top --market KOSPI --account 10000000
  go run ./cmd/screener watch --refresh 1m
  go run ./cmd/screener quote 005930
  go run ./cmd/screener serve --port 8089`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
