package config

import (
	"time"

	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// Config collects every tunable the server reads from the environment.
// Constructed once in main and injected; nothing reads os.Getenv after boot.
type Config struct {
	Port         string
	IsProduction bool

	// Presence thresholds.
	IdleThreshold    time.Duration
	AfkThreshold     time.Duration
	HeartbeatTimeout time.Duration

	// Reconnection and host migration.
	ReconnectGrace     time.Duration
	HostMigrationGrace time.Duration

	// Rate limiting.
	ConnBudget    int
	OriginBudget  int
	RateWindow    time.Duration
	BlockDuration time.Duration
	LimiterTTL    time.Duration

	// Pending word arbitration.
	VoteDeadline time.Duration

	// Reaper.
	StaleRoomAfter time.Duration
	SweepInterval  time.Duration

	// External profile service.
	ProfileServiceURL string
	GuestTokenSecret  string
}

func FromEnv(isProduction bool) *Config {
	return &Config{
		Port:               util.GetEnvStr("PORT", "8080"),
		IsProduction:       isProduction,
		IdleThreshold:      util.GetEnvDuration("IDLE_THRESHOLD", 30*time.Second),
		AfkThreshold:       util.GetEnvDuration("AFK_THRESHOLD", 120*time.Second),
		HeartbeatTimeout:   util.GetEnvDuration("HEARTBEAT_TIMEOUT", 45*time.Second),
		ReconnectGrace:     util.GetEnvDuration("RECONNECT_GRACE", 5*time.Minute),
		HostMigrationGrace: util.GetEnvDuration("HOST_MIGRATION_GRACE", 30*time.Second),
		ConnBudget:         util.GetEnvInt("RATE_LIMIT_CONN_BUDGET", 150),
		OriginBudget:       util.GetEnvInt("RATE_LIMIT_ORIGIN_BUDGET", 500),
		RateWindow:         util.GetEnvDuration("RATE_LIMIT_WINDOW", 10*time.Second),
		BlockDuration:      util.GetEnvDuration("RATE_LIMIT_BLOCK", 60*time.Second),
		LimiterTTL:         util.GetEnvDuration("RATE_LIMITER_TTL", 1*time.Hour),
		VoteDeadline:       util.GetEnvDuration("VOTE_DEADLINE", 20*time.Second),
		StaleRoomAfter:     util.GetEnvDuration("STALE_ROOM_AFTER", 2*time.Hour),
		SweepInterval:      util.GetEnvDuration("SWEEP_INTERVAL", 10*time.Minute),
		ProfileServiceURL:  util.GetEnvStr("PROFILE_SERVICE_URL", ""),
		GuestTokenSecret:   util.GetEnvStr("GUEST_TOKEN_SECRET", ""),
	}
}
