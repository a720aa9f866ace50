package repository

import (
	"time"

	kbdomain "supportmail-backend/internal/knowledge/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryRepository defines the interface for knowledge entry operations
type EntryRepository interface {
	// GetAll retrieves every knowledge entry
	GetAll() ([]*kbdomain.Entry, error)
	// GetByCategory retrieves all entries in one category
	GetByCategory(category kbdomain.Category) ([]*kbdomain.Entry, error)
	// Upsert creates or updates the entry for (category, key)
	Upsert(category kbdomain.Category, key, value string) (*kbdomain.Entry, error)
	// Delete removes the entry for (category, key)
	Delete(category kbdomain.Category, key string) error
	// Count returns the total number of entries
	Count() (int64, error)
}

// entryRepository implements EntryRepository interface
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new instance of entryRepository
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) GetAll() ([]*kbdomain.Entry, error) {
	var entries []*kbdomain.Entry
	err := r.db.Order("category, key").Find(&entries).Error
	return entries, err
}

func (r *entryRepository) GetByCategory(category kbdomain.Category) ([]*kbdomain.Entry, error) {
	var entries []*kbdomain.Entry
	err := r.db.Where("category = ?", category).Order("key").Find(&entries).Error
	return entries, err
}

func (r *entryRepository) Upsert(category kbdomain.Category, key, value string) (*kbdomain.Entry, error) {
	var existing kbdomain.Entry
	err := r.db.Where("category = ? AND key = ?", category, key).First(&existing).Error

	now := time.Now()
	if err == gorm.ErrRecordNotFound {
		entry := kbdomain.Entry{
			ID:        uuid.New().String(),
			Category:  category,
			Key:       key,
			Value:     value,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.db.Create(&entry).Error; err != nil {
			return nil, err
		}
		return &entry, nil
	} else if err != nil {
		return nil, err
	}

	existing.Value = value
	existing.UpdatedAt = now
	if err := r.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *entryRepository) Delete(category kbdomain.Category, key string) error {
	return r.db.Where("category = ? AND key = ?", category, key).Delete(&kbdomain.Entry{}).Error
}

func (r *entryRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&kbdomain.Entry{}).Count(&count).Error
	return count, err
}
