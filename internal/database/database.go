package database

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medprep/importer/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the content store. A non-empty databaseURL selects
// postgres; otherwise the sqlite file at databasePath is used.
func NewDatabase(databaseURL, databasePath string) (*Database, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		// sqlite ships with foreign keys off; the import pipeline relies
		// on FK violations surfacing as classified errors. The DSN form
		// applies the pragma to every pooled connection.
		dialector = sqlite.Open(databasePath + "?_foreign_keys=on")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Chapter{},
		&entities.Concept{},
		&entities.Question{},
		&entities.Option{},
		&entities.Image{},
		&entities.ImportRun{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if databaseURL != "" {
		log.Printf("Database initialized (postgres)")
	} else {
		log.Printf("Database initialized at %s", databasePath)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) CreateImportRun(run *entities.ImportRun) error {
	return d.DB.Create(run).Error
}

func (d *Database) UpdateImportRun(run *entities.ImportRun) error {
	return d.DB.Save(run).Error
}

func (d *Database) GetImportRunByPublicID(publicID string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := d.DB.Where("public_id = ?", publicID).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (d *Database) GetRecentImportRuns(limit int) ([]entities.ImportRun, error) {
	var runs []entities.ImportRun
	query := d.DB.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}

// MarshalRunErrors encodes the accumulated error list for ImportRun.Errors.
func MarshalRunErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	data, err := json.Marshal(errs)
	if err != nil {
		return ""
	}
	return string(data)
}

func (d *Database) CountChapters() (int64, error) {
	var n int64
	err := d.DB.Model(&entities.Chapter{}).Count(&n).Error
	return n, err
}

func (d *Database) CountConcepts() (int64, error) {
	var n int64
	err := d.DB.Model(&entities.Concept{}).Count(&n).Error
	return n, err
}

func (d *Database) CountQuestions() (int64, error) {
	var n int64
	err := d.DB.Model(&entities.Question{}).Count(&n).Error
	return n, err
}

func (d *Database) CountOptions() (int64, error) {
	var n int64
	err := d.DB.Model(&entities.Option{}).Count(&n).Error
	return n, err
}

func (d *Database) CountImages() (int64, error) {
	var n int64
	err := d.DB.Model(&entities.Image{}).Count(&n).Error
	return n, err
}

func (d *Database) DeleteAllImages() (int64, error) {
	result := d.DB.Exec("DELETE FROM images")
	return result.RowsAffected, result.Error
}

func (d *Database) DeleteAllOptions() (int64, error) {
	result := d.DB.Exec("DELETE FROM options")
	return result.RowsAffected, result.Error
}

func (d *Database) DeleteAllQuestions() (int64, error) {
	result := d.DB.Exec("DELETE FROM questions")
	return result.RowsAffected, result.Error
}

func (d *Database) DeleteAllConcepts() (int64, error) {
	result := d.DB.Exec("DELETE FROM concepts")
	return result.RowsAffected, result.Error
}

func (d *Database) DeleteAllChapters() (int64, error) {
	result := d.DB.Exec("DELETE FROM chapters")
	return result.RowsAffected, result.Error
}
