package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"anpr-crossing/internal/domain/anpr"
)

const (
	ListTypeWhitelist = "WHITELIST"
	ListTypeBlacklist = "BLACKLIST"

	DefaultWhitelist = "default_whitelist"
)

type PlateRepository struct {
	db *gorm.DB
}

func NewPlateRepository(db *gorm.DB) *PlateRepository {
	return &PlateRepository{db: db}
}

func (Plate) TableName() string {
	return "anpr_plates"
}

func (PlateRead) TableName() string {
	return "anpr_plate_reads"
}

func (List) TableName() string {
	return "anpr_lists"
}

func (ListItem) TableName() string {
	return "anpr_list_items"
}

type Plate struct {
	ID         uuid.UUID `gorm:"primaryKey"`
	Number     string    `gorm:"not null"`
	Normalized string    `gorm:"not null;uniqueIndex"`
	CreatedAt  time.Time
}

type PlateRead struct {
	ID                  uuid.UUID `gorm:"primaryKey"`
	PlateID             *uuid.UUID
	CameraID            string `gorm:"not null"`
	TrackID             int64  `gorm:"not null"`
	ClassName           string `gorm:"not null"`
	Text                string `gorm:"not null"`
	PlateKey            string `gorm:"not null"`
	Confidence          float64
	DetectionConfidence float64
	SnapshotURL         *string
	EntryDate           string    `gorm:"not null"`
	EntryTime           string    `gorm:"not null"`
	EmittedAt           time.Time `gorm:"not null"`
	Metadata            datatypes.JSON
	CreatedAt           time.Time
}

type List struct {
	ID          uuid.UUID `gorm:"primaryKey"`
	Name        string    `gorm:"not null;uniqueIndex"`
	Type        string    `gorm:"not null"`
	Description *string
	CreatedAt   time.Time
}

type ListItem struct {
	ListID    uuid.UUID `gorm:"primaryKey"`
	PlateID   uuid.UUID `gorm:"primaryKey"`
	Note      *string
	CreatedAt time.Time
}

// ReadFilter narrows FindReads. Nil fields are not applied.
type ReadFilter struct {
	PlateKey *string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// readMetadata is stored as JSON next to each read.
type readMetadata struct {
	X1        int       `json:"x1"`
	Y1        int       `json:"y1"`
	X2        int       `json:"x2"`
	Y2        int       `json:"y2"`
	RecordID  string    `json:"record_id"`
	EmittedAt time.Time `json:"emitted_at"`
}

func (r *PlateRepository) GetOrCreatePlate(ctx context.Context, key, original string) (uuid.UUID, error) {
	var plate Plate
	err := r.db.WithContext(ctx).Where("normalized = ?", key).First(&plate).Error
	if err == nil {
		return plate.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	plate = Plate{
		ID:         uuid.New(),
		Number:     original,
		Normalized: key,
		CreatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&plate).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create plate: %w", err)
	}
	return plate.ID, nil
}

func (r *PlateRepository) CreatePlateRead(ctx context.Context, record anpr.PlateRecord, plateID uuid.UUID, plateKey, snapshotURL string) error {
	read := newPlateRead(record, plateID, plateKey, snapshotURL)

	meta, err := json.Marshal(readMetadata{
		X1:        record.Box.X1,
		Y1:        record.Box.Y1,
		X2:        record.Box.X2,
		Y2:        record.Box.Y2,
		RecordID:  record.ID.String(),
		EmittedAt: record.EmittedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal read metadata: %w", err)
	}
	read.Metadata = datatypes.JSON(meta)

	if err := r.db.WithContext(ctx).Create(&read).Error; err != nil {
		return fmt.Errorf("failed to create plate read in database: %w", err)
	}
	return nil
}

func newPlateRead(record anpr.PlateRecord, plateID uuid.UUID, plateKey, snapshotURL string) PlateRead {
	read := PlateRead{
		ID:                  record.ID,
		CameraID:            record.CameraID,
		TrackID:             record.TrackID,
		ClassName:           record.ClassName,
		Text:                record.Text,
		PlateKey:            plateKey,
		Confidence:          record.Confidence,
		DetectionConfidence: record.DetectionConfidence,
		EntryDate:           record.EntryDate,
		EntryTime:           record.EntryTime,
		EmittedAt:           record.EmittedAt,
		CreatedAt:           time.Now(),
	}
	if read.ID == uuid.Nil {
		read.ID = uuid.New()
	}
	if plateID != uuid.Nil {
		read.PlateID = &plateID
	}
	if snapshotURL != "" {
		read.SnapshotURL = &snapshotURL
	}
	return read
}

func (r *PlateRepository) FindListsForPlate(ctx context.Context, plateID uuid.UUID) ([]anpr.ListHit, error) {
	var hits []anpr.ListHit

	err := r.db.WithContext(ctx).
		Table("anpr_list_items").
		Select("anpr_lists.id as list_id, anpr_lists.name as list_name, anpr_lists.type as list_type").
		Joins("JOIN anpr_lists ON anpr_list_items.list_id = anpr_lists.id").
		Where("anpr_list_items.plate_id = ?", plateID).
		Scan(&hits).Error

	if err != nil {
		return nil, err
	}

	return hits, nil
}

func (r *PlateRepository) FindPlatesByKey(ctx context.Context, key string) ([]Plate, error) {
	var plates []Plate
	err := r.db.WithContext(ctx).
		Where("normalized = ?", key).
		Find(&plates).Error
	return plates, err
}

func (r *PlateRepository) FindReads(ctx context.Context, filter ReadFilter) ([]PlateRead, error) {
	query := r.db.WithContext(ctx).Model(&PlateRead{})

	if filter.PlateKey != nil {
		query = query.Where("plate_key = ?", *filter.PlateKey)
	}
	if filter.From != nil {
		query = query.Where("emitted_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("emitted_at <= ?", *filter.To)
	}

	query = query.Order("emitted_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var reads []PlateRead
	err := query.Find(&reads).Error
	return reads, err
}

func (r *PlateRepository) GetLastReadTimeForPlate(ctx context.Context, plateID uuid.UUID) (*time.Time, error) {
	var read PlateRead
	err := r.db.WithContext(ctx).
		Where("plate_id = ?", plateID).
		Order("emitted_at DESC").
		First(&read).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &read.EmittedAt, nil
}

// AddPlateToList puts the plate on the named list, creating the list when missing.
// Adding a plate that is already listed is a no-op.
func (r *PlateRepository) AddPlateToList(ctx context.Context, listName, listType, key, original, note string) (uuid.UUID, error) {
	var plateID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PlateRepository{db: tx}
		id, err := txRepo.GetOrCreatePlate(ctx, key, original)
		if err != nil {
			return err
		}
		plateID = id

		var list List
		err = tx.Where("name = ? AND type = ?", listName, listType).First(&list).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			list = List{ID: uuid.New(), Name: listName, Type: listType, CreatedAt: time.Now()}
			err = tx.Create(&list).Error
		}
		if err != nil {
			return fmt.Errorf("resolve list %s: %w", listName, err)
		}

		item := ListItem{ListID: list.ID, PlateID: plateID, CreatedAt: time.Now()}
		if note != "" {
			item.Note = &note
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("add plate to list: %w", err)
	}
	return plateID, nil
}

func (r *PlateRepository) DeleteOldReads(ctx context.Context, days int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -days)
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoffTime).
		Delete(&PlateRead{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
