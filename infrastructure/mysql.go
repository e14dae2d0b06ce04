package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"cv-checker/domain"
	"cv-checker/usecase"
)

// NewMySQLConnection opens the database from DB_DSN and migrates the
// five collections.
func NewMySQLConnection(log *logrus.Logger) (*gorm.DB, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, errors.New("DB_DSN is not set in environment")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Parameter{},
		&domain.Result{},
		&domain.Process{},
		&domain.Request{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if err := seedUsers(db); err != nil {
		return nil, err
	}

	log.Info("connected to MySQL and migrated schema")
	return db, nil
}

// seedUsers creates the initial account evaluations run under.
// Account management itself lives outside this service.
func seedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("SEED_USERNAME")
	if username == "" {
		username = "admin"
	}
	user := domain.User{Username: username, Status: domain.RecordActive}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	return nil
}

// ProcessStore is the gorm-backed implementation of
// usecase.ProcessStore.
type ProcessStore struct {
	db *gorm.DB
}

func NewProcessStore(db *gorm.DB) *ProcessStore {
	return &ProcessStore{db: db}
}

func (s *ProcessStore) Create(ctx context.Context, p *domain.Process) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ProcessStore) GetByID(ctx context.Context, id uint) (*domain.Process, error) {
	var p domain.Process
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.RecordActive).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProcessStore) GetWithResult(ctx context.Context, id uint) (*domain.Process, error) {
	var p domain.Process
	err := s.db.WithContext(ctx).
		Preload("Result").
		Where("status = ?", domain.RecordActive).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProcessStore) CountProcessing(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Process{}).
		Where("status = ? AND status_process = ?", domain.RecordActive, domain.ProcessProcessing).
		Count(&count).Error
	return count, err
}

// SetStatusProcess moves the process into a non-terminal state. The
// complementary terminal fields are cleared with it: a re-evaluated
// process must not carry a failure reason into queued or a result
// reference into a later failure.
func (s *ProcessStore) SetStatusProcess(ctx context.Context, id uint, status string) error {
	return s.db.WithContext(ctx).
		Model(&domain.Process{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status_process": status,
			"failure_reason": "",
			"result_id":      nil,
		}).Error
}

func (s *ProcessStore) MarkFailed(ctx context.Context, id uint, reason string) error {
	return s.db.WithContext(ctx).
		Model(&domain.Process{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status_process": domain.ProcessFailed,
			"failure_reason": reason,
			"result_id":      nil,
		}).Error
}

// MarkSuccess writes the result and flips the process to success in
// one transaction, so a reader never sees success without a result.
func (s *ProcessStore) MarkSuccess(ctx context.Context, id uint, result *domain.Result) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result.Status = domain.RecordActive
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Process{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status_process": domain.ProcessSuccess,
				"result_id":      result.ID,
				"failure_reason": "",
			}).Error
	})
}

// ParameterStore is the gorm-backed implementation of
// usecase.ParameterStore.
type ParameterStore struct {
	db *gorm.DB
}

func NewParameterStore(db *gorm.DB) *ParameterStore {
	return &ParameterStore{db: db}
}

func (s *ParameterStore) Create(ctx context.Context, p *domain.Parameter) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ParameterStore) GetByID(ctx context.Context, id uint) (*domain.Parameter, error) {
	var p domain.Parameter
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.RecordActive).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RequestStore appends rows to the AI usage ledger.
type RequestStore struct {
	db *gorm.DB
}

func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{db: db}
}

func (s *RequestStore) Append(ctx context.Context, processID uint, tokenUsed int) error {
	row := domain.Request{
		ProcessID: processID,
		TokenUsed: tokenUsed,
		Status:    domain.RecordActive,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// UserStore resolves usernames to active accounts.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) ResolveActiveUser(ctx context.Context, username string) (uint, error) {
	var u domain.User
	err := s.db.WithContext(ctx).
		Where("username = ? AND status = ?", username, domain.RecordActive).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, usecase.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}
