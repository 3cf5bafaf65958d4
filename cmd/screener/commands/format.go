package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wonny/kscreener/internal/screen"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintTopHeader prints the ranked-list header line
func PrintTopHeader(asOf time.Time, count int) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  거래대금 상위 %d종목  (기준 %s)\n", count, asOf.Format("2006-01-02 15:04"))
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintTopRows prints ranked rows, with sizing columns when previews exist
func PrintTopRows(rows []screen.Row, riskView bool) {
	if riskView {
		fmt.Printf("  %-4s %-8s %-12s %12s %8s %10s %10s %8s\n",
			"순위", "코드", "종목명", "현재가", "등락률", "거래대금", "손절가", "매수가능")
	} else {
		fmt.Printf("  %-4s %-8s %-12s %12s %8s %10s\n",
			"순위", "코드", "종목명", "현재가", "등락률", "거래대금")
	}

	for _, row := range rows {
		base := fmt.Sprintf("  %-4d %-8s %-12s %12s %7.2f%% %9s억",
			row.Rank, row.Code, row.Name,
			formatKRW(row.Price), row.ChangePct, formatEok(row.Value))

		if riskView && row.Preview != nil {
			fmt.Printf("%s %10s %7s주\n", base,
				formatKRW(row.Preview.StopPrice), formatKRW(row.Preview.MaxShares))
		} else {
			fmt.Println(base)
		}
	}
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// formatKRW groups digits by thousands (71000 -> 71,000)
func formatKRW(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// formatEok renders won as 억원 with one decimal (단위: 1억 = 1e8원)
func formatEok(won int64) string {
	return strconv.FormatFloat(float64(won)/1e8, 'f', 1, 64)
}
