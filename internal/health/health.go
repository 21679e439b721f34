package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/laneguardian/laneguardian/internal/logger"
)

// Stats is a point-in-time snapshot of bot state, supplied by the
// caller so this package needs no view into the bot internals.
type Stats struct {
	Connected bool
	Sessions  int
	Voice     int
	Guilds    int
}

// StatsFunc supplies the current Stats for a status request.
type StatsFunc func() Stats

// Server exposes GET /health for liveness probes and GET /status with
// bot and host details.
type Server struct {
	srv     *http.Server
	stats   StatsFunc
	started time.Time
}

func NewServer(addr string, stats StatsFunc) *Server {
	s := &Server{
		stats:   stats,
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start serves in the background. A listen failure is logged, the bot
// runs fine without its health endpoint.
func (s *Server) Start() {
	go func() {
		logger.Info("health server starting", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// StatusResponse is the GET /status payload.
type StatusResponse struct {
	Status        string  `json:"status"`
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Connected     bool    `json:"gateway_connected"`
	Sessions      int     `json:"active_sessions"`
	Voice         int     `json:"voice_connections"`
	Guilds        int     `json:"guilds"`
	CPUUsage      float64 `json:"cpu_usage_percent"`
	MemTotal      uint64  `json:"mem_total_bytes"`
	MemUsed       uint64  `json:"mem_used_bytes"`
	MemUsage      float64 `json:"mem_usage_percent"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()

	cpuPercent, _ := cpu.Percent(time.Second, false)
	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	memInfo, _ := mem.VirtualMemory()

	stats := s.stats()

	status := StatusResponse{
		Status:        "healthy",
		Hostname:      hostname,
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Connected:     stats.Connected,
		Sessions:      stats.Sessions,
		Voice:         stats.Voice,
		Guilds:        stats.Guilds,
		CPUUsage:      cpuUsage,
	}
	if !stats.Connected {
		status.Status = "degraded"
	}
	if memInfo != nil {
		status.MemTotal = memInfo.Total
		status.MemUsed = memInfo.Used
		status.MemUsage = memInfo.UsedPercent
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
