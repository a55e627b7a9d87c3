package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tinydevcrm/eventbridge/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Views     *service.ViewService
	Jobs      *service.JobService
	Channels  *service.ChannelService
	Refreshes *service.RefreshLogService

	// StreamHeartbeat is the SSE heartbeat interval for listen streams.
	StreamHeartbeat time.Duration
	Logger          *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	viewHandlers := &ViewHandlers{Svc: services.Views}
	jobHandlers := &JobHandlers{Svc: services.Jobs}
	channelHandlers := &ChannelHandlers{Svc: services.Channels, Heartbeat: services.StreamHeartbeat}
	refreshHandlers := &RefreshHandlers{Svc: services.Refreshes}

	owned := RequireOwner()

	mux.Handle("POST /views/create", owned(http.HandlerFunc(viewHandlers.CreateView)))
	mux.Handle("GET /views", owned(http.HandlerFunc(viewHandlers.ListViews)))
	mux.Handle("GET /views/{id}", owned(http.HandlerFunc(viewHandlers.GetView)))

	mux.Handle("POST /jobs/create", owned(http.HandlerFunc(jobHandlers.CreateJob)))
	mux.Handle("GET /jobs", owned(http.HandlerFunc(jobHandlers.ListJobs)))
	mux.Handle("GET /jobs/{id}", owned(http.HandlerFunc(jobHandlers.GetJob)))

	mux.Handle("POST /channels/create", owned(http.HandlerFunc(channelHandlers.CreateChannel)))
	mux.Handle("POST /channels/{id}/open", owned(http.HandlerFunc(channelHandlers.OpenChannel)))
	mux.Handle("POST /channels/{id}/close", owned(http.HandlerFunc(channelHandlers.CloseChannel)))
	mux.Handle("GET /channels/{id}/listen", owned(http.HandlerFunc(channelHandlers.Listen)))

	mux.Handle("GET /refreshes", owned(http.HandlerFunc(refreshHandlers.ListRefreshes)))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Logging(logger)(Recover(logger)(mux))
}
