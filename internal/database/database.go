package database

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/companion/internal/entities"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("record not found")

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: newQueryLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Record{},
		&entities.ImportSession{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// newQueryLogger reports slow queries and errors. A lookup of a missing key is
// a normal outcome here, not an error.
func newQueryLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the value stored under key.
func (d *Database) Get(key string) (string, error) {
	var record entities.Record
	err := d.DB.Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return record.Value, nil
}

// Set creates or replaces the value stored under key.
func (d *Database) Set(key, value string) error {
	record := entities.Record{Key: key, Value: value}
	return d.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}

// Delete removes key. A key that does not exist yields ErrNotFound.
func (d *Database) Delete(key string) error {
	result := d.DB.Where("key = ?", key).Delete(&entities.Record{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// KeysWithPrefix lists every key starting with prefix in key order.
func (d *Database) KeysWithPrefix(prefix string) ([]string, error) {
	var keys []string
	err := d.DB.Model(&entities.Record{}).
		Where("key LIKE ? ESCAPE '\\'", likePrefix(prefix)).
		Order("key").
		Pluck("key", &keys).Error
	return keys, err
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed.
func (d *Database) DeletePrefix(prefix string) (int64, error) {
	result := d.DB.Where("key LIKE ? ESCAPE '\\'", likePrefix(prefix)).Delete(&entities.Record{})
	return result.RowsAffected, result.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
