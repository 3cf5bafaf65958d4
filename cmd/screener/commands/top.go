package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kscreener/internal/risk"
	"github.com/wonny/kscreener/internal/screen"
)

// topCmd represents the top command
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "거래대금 상위 종목 한 번 조회",
	Long: `현재 필터 조건으로 거래대금 상위 종목을 한 번 조회합니다.

--account를 지정하면 종목별 손절가와 매수 가능 주수를 함께 표시합니다.

Example:
  go run ./cmd/screener top
  go run ./cmd/screener top --market KOSPI --min-value 500
  go run ./cmd/screener top --account 10000000 --risk 0.01 --stop 0.03 --cap 0.1`,
	RunE: runTop,
}

var topFilters filterFlags

func init() {
	rootCmd.AddCommand(topCmd)
	topFilters.register(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	filters := topFilters.toFilterState(cmd)
	if err := filters.Validate(); err != nil {
		return err
	}

	_, log, client, redisClient, err := newRankingClient()
	if err != nil {
		return fmt.Errorf("initialize clients: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := screen.BuildQuery(filters)
	resp, err := client.GetTopList(ctx, query.Values())
	if err != nil {
		log.WithError(err).Error("Ranked list fetch failed")
		return fmt.Errorf("fetch ranked list: %w", err)
	}

	riskView := filters.RiskViewEnabled()
	rows := make([]screen.Row, 0, len(resp.Items))
	for _, item := range resp.Items {
		row := screen.Row{Item: item}
		if riskView {
			if preview, ok := risk.Compute(item.Price, filters.Risk); ok {
				row.Preview = preview
			}
		}
		rows = append(rows, row)
	}

	PrintTopHeader(resp.AsOf, len(rows))
	PrintTopRows(rows, riskView)
	return nil
}
