package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kscreener/internal/external/ranking"
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote <code>",
	Short: "단일 종목 시세 조회",
	Long: `종목 코드로 단일 시세를 조회합니다.

Example:
  go run ./cmd/screener quote 005930`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	code := args[0]

	_, log, client, redisClient, err := newRankingClient()
	if err != nil {
		return fmt.Errorf("initialize clients: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quote, err := client.GetQuote(ctx, code)
	if err != nil {
		if errors.Is(err, ranking.ErrQuoteNotFound) {
			return fmt.Errorf("종목을 찾을 수 없습니다: %s", code)
		}
		log.WithError(err).Error("Quote lookup failed")
		return fmt.Errorf("fetch quote: %w", err)
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s (%s / %s)\n", quote.Name, quote.Code, quote.Market)
	fmt.Println("───────────────────────────────────────────────────────────")
	fmt.Printf("  현재가    : %s원\n", formatKRW(quote.Price))
	fmt.Printf("  등락률    : %.2f%%\n", quote.ChangePct)
	fmt.Printf("  거래량    : %s주\n", formatKRW(quote.Volume))
	fmt.Printf("  거래대금  : %s억원\n", formatEok(quote.Value))
	fmt.Printf("  기준시각  : %s\n", quote.AsOf.Format("2006-01-02 15:04:05"))
	fmt.Println("═══════════════════════════════════════════════════════════")
	return nil
}
