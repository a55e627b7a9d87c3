// Package mocks provides mock implementations for testing the eventbridge
// notification pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces in internal/core. To regenerate after interface
// changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	repo := mocks.NewMockViewRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(view, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=view_repository_mock.go github.com/tinydevcrm/eventbridge/internal/core ViewRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cron_job_repository_mock.go github.com/tinydevcrm/eventbridge/internal/core CronJobRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=channel_repository_mock.go github.com/tinydevcrm/eventbridge/internal/core ChannelRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=refresh_log_repository_mock.go github.com/tinydevcrm/eventbridge/internal/core RefreshLogRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=scheduler_mock.go github.com/tinydevcrm/eventbridge/internal/core Scheduler
