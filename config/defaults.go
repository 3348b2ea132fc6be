package config

import "time"

// DefaultConfig returns the default configuration. Every loader run
// starts from these values.
func DefaultConfig() *Config {
	return &Config{
		Workflow: DefaultWorkflowConfig(),
		Redis:    DefaultRedisConfig(),
		Reports:  DefaultReportsConfig(),
		Log:      DefaultLogConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// DefaultWorkflowConfig returns the default workflow bounds.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		MaxSteps:      30,
		RAGMaxRetries: 3,
	}
}

// DefaultRedisConfig returns the default conversation store settings.
// Disabled by default; the in-memory store is used instead.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  false,
		Addr:     "localhost:6379",
		DB:       0,
		PoolSize: 10,
		TTL:      24 * time.Hour,
	}
}

// DefaultReportsConfig returns the default report persistence settings.
func DefaultReportsConfig() ReportsConfig {
	return ReportsConfig{
		Enabled:         false,
		DSN:             "reports.db",
		MaxIdleConns:    2,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stderr"},
	}
}

// DefaultMetricsConfig returns the default metrics settings.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: false,
		Addr:    ":9091",
	}
}
