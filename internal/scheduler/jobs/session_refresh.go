package jobs

import (
	"context"

	"github.com/wonny/kscreener/internal/screen"
	"github.com/wonny/kscreener/pkg/logger"
)

// SessionRefreshJob forces a ranked-list re-fetch at a KRX session
// boundary so the first render of a trading day never shows yesterday's
// list until the periodic refresh happens to fire.
// ⭐ SSOT: 장 시작/마감 강제 갱신은 이 Job에서만
type SessionRefreshJob struct {
	name       string
	schedule   string
	controller *screen.Controller
	logger     *logger.Logger
}

// NewSessionOpenJob refreshes right after the KRX open (09:00 KST, weekdays)
func NewSessionOpenJob(controller *screen.Controller, log *logger.Logger) *SessionRefreshJob {
	return &SessionRefreshJob{
		name:       "session_open_refresh",
		schedule:   "0 0 9 * * 1-5",
		controller: controller,
		logger:     log,
	}
}

// NewSessionCloseJob refreshes right after the KRX close (15:30 KST, weekdays)
func NewSessionCloseJob(controller *screen.Controller, log *logger.Logger) *SessionRefreshJob {
	return &SessionRefreshJob{
		name:       "session_close_refresh",
		schedule:   "0 30 15 * * 1-5",
		controller: controller,
		logger:     log,
	}
}

// Name returns the job name
func (j *SessionRefreshJob) Name() string {
	return j.name
}

// Schedule returns the cron schedule expression
func (j *SessionRefreshJob) Schedule() string {
	return j.schedule
}

// Run forces an immediate re-fetch of the current query
func (j *SessionRefreshJob) Run(ctx context.Context) error {
	j.logger.WithField("job", j.name).Info("Forcing session boundary refresh")
	j.controller.RefreshNow()
	return nil
}
