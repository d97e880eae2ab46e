// Package health reports process liveness to the shared cache.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/EasterCompany/dex-vmt-service/cache"
	"github.com/EasterCompany/dex-vmt-service/config"
	"github.com/EasterCompany/dex-vmt-service/system"
	"github.com/EasterCompany/dex-vmt-service/utils"
)

// DefaultInterval is used when no heartbeat interval is configured.
const DefaultInterval = 30 * time.Second

// Process states.
const (
	StateStarting = "starting"
	StateReady    = "ready"
	StateStopping = "stopping"
)

// GetDiscordStatus returns the status of the Discord connection as a formatted string.
func GetDiscordStatus(s *discordgo.Session) string {
	if s == nil {
		return "**ERROR**: `No session`"
	}
	if s.DataReady {
		return "**OK**"
	}
	return "**ERROR**: `Disconnected`"
}

// GetCacheStatus returns the status of a cache connection as a formatted string.
func GetCacheStatus(ctx context.Context, c cache.Cache, cfg *config.ConnectionConfig) string {
	if cfg == nil || cfg.Addr == "" {
		return "`Not Configured`"
	}
	if c == nil {
		return "**ERROR**: `Initialization failed`"
	}
	if err := c.Ping(ctx); err != nil {
		return fmt.Sprintf("**ERROR**: `%v`", err)
	}
	return "**OK**"
}

// Status is the heartbeat document.
type Status struct {
	ID        string           `json:"id"`
	PID       int              `json:"pid"`
	Host      string           `json:"host"`
	State     string           `json:"state"`
	Version   utils.Version    `json:"version"`
	StartedAt time.Time        `json:"started_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	System    system.Sample    `json:"system"`
	Metrics   map[string]int64 `json:"metrics"`
	Discord   string           `json:"discord"`
}

// Reporter periodically writes a Status to the cache.
type Reporter struct {
	cache    cache.Cache
	session  *discordgo.Session
	interval time.Duration
	logger   *zap.SugaredLogger

	host      string
	startedAt time.Time

	mu    sync.Mutex
	state string

	now     func() time.Time
	collect func() (system.Sample, error)
}

// NewReporter returns a Reporter. A nil cache makes Run a no-op apart from
// logging the first snapshot.
func NewReporter(c cache.Cache, s *discordgo.Session, interval time.Duration, logger *zap.SugaredLogger) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return &Reporter{
		cache:     c,
		session:   s,
		interval:  interval,
		logger:    logger,
		host:      host,
		startedAt: time.Now(),
		state:     StateStarting,
		now:       time.Now,
		collect:   system.Collect,
	}
}

// Key is the cache key the heartbeat is written under.
func (r *Reporter) Key() string {
	return cache.Key("process", r.host)
}

// SetState changes the reported process state.
func (r *Reporter) SetState(state string) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

// Snapshot builds the current Status.
func (r *Reporter) Snapshot() Status {
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	sample, err := r.collect()
	if err != nil {
		r.logger.Debugw("partial system sample", "error", err)
	}
	discord := ""
	if r.session != nil {
		discord = GetDiscordStatus(r.session)
	}
	return Status{
		ID:        "dex-vmt-service",
		PID:       os.Getpid(),
		Host:      r.host,
		State:     state,
		Version:   utils.GetVersion(),
		StartedAt: r.startedAt,
		UpdatedAt: r.now(),
		System:    sample,
		Metrics:   utils.GetMetrics(),
		Discord:   discord,
	}
}

// Beat writes one heartbeat. The entry expires after three missed intervals.
func (r *Reporter) Beat(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	data, err := json.Marshal(r.Snapshot())
	if err != nil {
		return fmt.Errorf("could not encode heartbeat: %w", err)
	}
	return r.cache.Set(ctx, r.Key(), data, 3*r.interval)
}

// Clear removes the heartbeat.
func (r *Reporter) Clear(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, r.Key())
}

// Run beats until ctx is cancelled and then clears the heartbeat.
func (r *Reporter) Run(ctx context.Context) {
	if r.cache == nil {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	beat := func() {
		if err := r.Beat(ctx); err != nil && ctx.Err() == nil {
			r.logger.Warnw("heartbeat failed", "key", r.Key(), "error", err)
		}
	}
	beat()
	for {
		select {
		case <-ctx.Done():
			clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := r.Clear(clearCtx); err != nil {
				r.logger.Warnw("could not clear heartbeat", "key", r.Key(), "error", err)
			}
			cancel()
			return
		case <-ticker.C:
			beat()
		}
	}
}
