package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kscreener/internal/api"
	"github.com/wonny/kscreener/internal/api/handlers"
	"github.com/wonny/kscreener/internal/scheduler"
	"github.com/wonny/kscreener/internal/scheduler/jobs"
	"github.com/wonny/kscreener/internal/screen"
	"github.com/wonny/kscreener/pkg/theme"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "대시보드 BFF 서버 시작",
	Long: `대시보드 프런트엔드용 BFF 서버를 시작합니다.

이 명령어는:
- 스크리닝 상태 조회/변경 엔드포인트 제공
- WebSocket으로 상태 스냅샷 푸시
- 장 시작/마감 시각에 강제 갱신 스케줄 등록

Endpoints:
  GET  /health               - Health check
  GET  /api/screen/state     - 현재 스냅샷 조회
  PUT  /api/screen/filters   - 필터 변경
  POST /api/screen/refresh   - 강제 갱신
  GET  /api/screen/search    - 검색 상태 조회
  POST /api/screen/search    - 종목 검색 입력
  POST /api/screen/select    - 검색 결과 선택
  GET  /api/quote/{code}     - 단일 시세 조회
  GET  /api/theme            - 테마 조회
  PUT  /api/theme            - 테마 변경
  GET  /api/screen/ws        - 상태 푸시 (WebSocket)

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8089`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "서버 포트 (기본: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== KScreener BFF Server ===")

	// 1. Load config, logger, clients
	cfg, log, client, redisClient, err := newRankingClient()
	if err != nil {
		return fmt.Errorf("initialize clients: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing BFF server")

	// 2. Create controller
	controller := screen.NewController(
		client.GetTopList,
		client.SearchSymbols,
		client.GetQuote,
		cfg.Screen.RefreshInterval,
		cfg.Screen.SearchDebounce,
		log,
	)
	defer controller.Stop()

	// 3. Theme store
	themeStore, err := theme.NewStore(cfg.ThemeDir)
	if err != nil {
		return fmt.Errorf("initialize theme store: %w", err)
	}

	// 4. Push hub: every state transition fans out to connected clients
	hub := api.NewHub(log)
	defer hub.Close()
	controller.Subscribe(hub.Broadcast)

	// 5. Handler and router
	screenHandler := handlers.NewScreenHandler(controller, client, themeStore, log)
	router := api.NewRouter(screenHandler, hub, log)

	// 6. Server
	server := api.New(cfg, log, router)

	// 7. Session boundary refresh jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewSessionOpenJob(controller, log)); err != nil {
		return fmt.Errorf("schedule open refresh: %w", err)
	}
	if err := sched.AddJob(jobs.NewSessionCloseJob(controller, log)); err != nil {
		return fmt.Errorf("schedule close refresh: %w", err)
	}

	// 8. Start everything
	controller.Start()
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("BFF server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
