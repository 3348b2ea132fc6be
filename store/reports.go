// Package store persists finalized research reports through gorm.
//
// ReportStore satisfies the research assembly's ReportSaver contract;
// callers that assemble the research pipeline with real delegates pass
// it through agents.WithReportSaver. The bundled CLI does not wire the
// research pipeline yet, so it leaves this store unused.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// ReportRecord is the persisted form of a finalized report. The section
// breakdown is stored as JSON alongside the rendered markdown so both
// the structured and the display forms survive.
type ReportRecord struct {
	ID        string    `gorm:"primaryKey"`
	Topic     string    `gorm:"index;not null"`
	Summary   string    `gorm:"type:text"`
	Markdown  string    `gorm:"type:text;not null"`
	Sections  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (ReportRecord) TableName() string { return "reports" }

// Config configures the report store.
type Config struct {
	// DSN is the sqlite data source; ":memory:" keeps everything
	// in-process, a file path persists across restarts.
	DSN string `yaml:"dsn" json:"dsn"`

	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// DefaultConfig returns the default report store configuration.
func DefaultConfig() Config {
	return Config{
		DSN:             "reports.db",
		MaxIdleConns:    2,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// ReportStore persists reports to sqlite through gorm. It satisfies the
// research assembly's ReportSaver contract.
type ReportStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReportStore opens the database, configures the pool, and migrates
// the schema.
func NewReportStore(config Config, logger *zap.Logger) (*ReportStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DSN == "" {
		config.DSN = DefaultConfig().DSN
	}

	db, err := gorm.Open(sqlite.Open(config.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(&ReportRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate report schema: %w", err)
	}

	logger.Info("report store initialized", zap.String("dsn", config.DSN))
	return &ReportStore{
		db:     db,
		logger: logger.With(zap.String("component", "report_store")),
	}, nil
}

// SaveReport implements the research assembly's ReportSaver contract.
func (s *ReportStore) SaveReport(ctx context.Context, topic string, report *types.Report, markdown string) error {
	sections, err := json.Marshal(report.DetailedAnalysis)
	if err != nil {
		return types.NewError(types.ErrStoreFailure, "failed to encode report sections").WithCause(err)
	}

	record := ReportRecord{
		ID:       uuid.NewString(),
		Topic:    topic,
		Summary:  report.ExecutiveSummary,
		Markdown: markdown,
		Sections: string(sections),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logger.Error("report save failed", zap.String("topic", topic), zap.Error(err))
		return types.NewError(types.ErrStoreFailure, "failed to save report").WithCause(err)
	}

	s.logger.Info("report saved", zap.String("id", record.ID), zap.String("topic", topic))
	return nil
}

// Get returns one report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*ReportRecord, error) {
	var record ReportRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewErrorf(types.ErrNotFound, "report %s not found", id)
	}
	if err != nil {
		return nil, types.NewError(types.ErrStoreFailure, "failed to load report").WithCause(err)
	}
	return &record, nil
}

// List returns the most recent reports, newest first.
func (s *ReportStore) List(ctx context.Context, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []ReportRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, types.NewError(types.ErrStoreFailure, "failed to list reports").WithCause(err)
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *ReportStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
