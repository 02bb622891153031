package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&DecisionLog{}, &HintRun{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveDecisionLog inserts or updates the log row for a request id.
func (d *Database) SaveDecisionLog(log *DecisionLog) error {
	if log == nil {
		return errors.New("decision log is nil")
	}
	log.RequestID = strings.TrimSpace(log.RequestID)
	if log.RequestID == "" {
		return errors.New("decision log request id is empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "request_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"primary_action",
			"sales_notes_json",
			"debug_flags_json",
			"cta",
			"clarification_question",
			"objection_handled",
			"reply",
			"guardrail_violation",
			"violations_json",
			"processing_time_ms",
		}),
	}).Create(log).Error
}

// GetDecisionLog fetches one log row by request id.
func (d *Database) GetDecisionLog(requestID string) (*DecisionLog, error) {
	var log DecisionLog
	if err := d.gorm.Where("request_id = ?", strings.TrimSpace(requestID)).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// ListDecisionLogs returns a page of decision logs, newest first, plus the
// total row count.
func (d *Database) ListDecisionLogs(offset, limit int) ([]DecisionLog, int64, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := d.gorm.Model(&DecisionLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []DecisionLog
	err := d.gorm.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountGuardrailViolations returns the number of logged runs that raised
// at least one guardrail violation.
func (d *Database) CountGuardrailViolations() (int64, error) {
	var total int64
	err := d.gorm.Model(&DecisionLog{}).
		Where("guardrail_violation = ?", true).
		Count(&total).Error
	return total, err
}

// SaveHintRun inserts a hint-run row.
func (d *Database) SaveHintRun(run *HintRun) error {
	if run == nil {
		return errors.New("hint run is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(run).Error
}

// ListHintRuns returns the most recent hint runs.
func (d *Database) ListHintRuns(limit int) ([]HintRun, error) {
	if limit <= 0 {
		limit = 25
	}
	var rows []HintRun
	err := d.gorm.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
