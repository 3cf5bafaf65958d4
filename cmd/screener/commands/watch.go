package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kscreener/internal/screen"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "거래대금 상위 종목 실시간 감시",
	Long: `필터 조건으로 거래대금 상위 종목을 주기적으로 갱신하며 표시합니다.

Features:
- 주기적 자동 갱신 (--refresh 간격)
- 필터 변경 시와 동일한 중복 억제/최신 응답 우선 로직
- Ctrl+C로 종료

Example:
  go run ./cmd/screener watch
  go run ./cmd/screener watch --refresh 1m --market KOSDAQ --account 10000000`,
	RunE: runWatch,
}

var (
	watchFilters filterFlags
	watchRefresh time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchFilters.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchRefresh, "refresh", 0, "갱신 간격 (기본: REFRESH_INTERVAL)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	filters := watchFilters.toFilterState(cmd)
	if err := filters.Validate(); err != nil {
		return err
	}

	cfg, log, client, redisClient, err := newRankingClient()
	if err != nil {
		return fmt.Errorf("initialize clients: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	refresh := cfg.Screen.RefreshInterval
	if watchRefresh > 0 {
		refresh = watchRefresh
	}

	controller := screen.NewController(
		client.GetTopList,
		client.SearchSymbols,
		client.GetQuote,
		refresh,
		cfg.Screen.SearchDebounce,
		log,
	)
	defer controller.Stop()

	controller.Subscribe(func(snap screen.Snapshot) {
		switch snap.Fetch.Status {
		case screen.StatusSuccess:
			PrintTopHeader(snap.Fetch.AsOf, len(snap.Rows))
			PrintTopRows(snap.Rows, snap.RiskViewEnabled)
		case screen.StatusError:
			fmt.Printf("\n⚠️  %s\n", snap.Fetch.Err)
		}
	})

	if err := controller.UpdateFilters(filters); err != nil {
		return err
	}
	controller.Start()

	fmt.Printf("=== KScreener Watch ===\n")
	fmt.Printf("Refresh: %v\n", refresh)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nStopping watch")
	return nil
}
