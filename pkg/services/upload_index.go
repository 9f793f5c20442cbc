package services

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Zelvix/models"
)

// UploadIndex remembers stored uploads. Indexing is best-effort: the upload
// handler logs failures and still answers the client.
type UploadIndex interface {
	Record(ctx context.Context, rec *models.UploadRecord) error
}

// NopIndex is used when no database is configured.
type NopIndex struct{}

func (NopIndex) Record(context.Context, *models.UploadRecord) error { return nil }

type GormUploadIndex struct {
	db *gorm.DB
}

// OpenMySQLIndex connects to MySQL and migrates the uploads table.
func OpenMySQLIndex(dsn string) (*GormUploadIndex, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return NewGormUploadIndex(db)
}

func NewGormUploadIndex(db *gorm.DB) (*GormUploadIndex, error) {
	if err := db.AutoMigrate(&models.UploadRecord{}); err != nil {
		return nil, fmt.Errorf("failed migrate: %w", err)
	}
	return &GormUploadIndex{db: db}, nil
}

func (g *GormUploadIndex) Record(ctx context.Context, rec *models.UploadRecord) error {
	if err := g.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("index upload %s: %w", rec.StoredName, err)
	}
	log.Printf("[upload-index] recorded %s id=%d", rec.StoredName, rec.ID)
	return nil
}

func (g *GormUploadIndex) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
