package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anpr-crossing/internal/repository"
	"anpr-crossing/internal/utils"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	defaultLimit  = 50
	maxLimit      = 100
	maxExportRows = 10000
	whitelistNote = "synced from vehicle registry"
)

type Repository interface {
	FindPlatesByKey(ctx context.Context, key string) ([]repository.Plate, error)
	GetLastReadTimeForPlate(ctx context.Context, plateID uuid.UUID) (*time.Time, error)
	FindReads(ctx context.Context, filter repository.ReadFilter) ([]repository.PlateRead, error)
	AddPlateToList(ctx context.Context, listName, listType, key, original, note string) (uuid.UUID, error)
	DeleteOldReads(ctx context.Context, days int) (int64, error)
}

// RecordService is the query side over persisted plate reads.
type RecordService struct {
	repo Repository
	log  zerolog.Logger
}

func NewRecordService(repo Repository, log zerolog.Logger) *RecordService {
	return &RecordService{
		repo: repo,
		log:  log,
	}
}

type ReadQuery struct {
	Plate  *string
	From   *string
	To     *string
	Limit  int
	Offset int
}

func (s *RecordService) FindPlates(ctx context.Context, plateQuery string) ([]PlateInfo, error) {
	key := utils.PlateKey(plateQuery)
	if key == "" {
		return nil, fmt.Errorf("%w: plate query cannot be empty", ErrInvalidInput)
	}

	plates, err := s.repo.FindPlatesByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to find plates: %w", err)
	}

	result := make([]PlateInfo, 0, len(plates))
	for _, p := range plates {
		lastReadTime, err := s.repo.GetLastReadTimeForPlate(ctx, p.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("plate_id", p.ID.String()).Msg("failed to get last read time")
		}
		result = append(result, PlateInfo{
			ID:           p.ID.String(),
			Number:       p.Number,
			Normalized:   p.Normalized,
			LastReadTime: lastReadTime,
		})
	}

	return result, nil
}

func (s *RecordService) FindReads(ctx context.Context, q ReadQuery) ([]ReadInfo, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	reads, err := s.repo.FindReads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find reads: %w", err)
	}

	result := make([]ReadInfo, 0, len(reads))
	for _, r := range reads {
		result = append(result, toReadInfo(r))
	}
	return result, nil
}

func buildFilter(q ReadQuery) (repository.ReadFilter, error) {
	var filter repository.ReadFilter

	if q.Plate != nil {
		if key := utils.PlateKey(*q.Plate); key != "" {
			filter.PlateKey = &key
		}
	}

	var err error
	if filter.From, err = parseTime(q.From, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseTime(q.To, "to"); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}

	filter.Limit = q.Limit
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	filter.Offset = max(q.Offset, 0)

	return filter, nil
}

func parseTime(value *string, field string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*value))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s time format", ErrInvalidInput, field)
	}
	return &t, nil
}

func toReadInfo(r repository.PlateRead) ReadInfo {
	var plateID *string
	if r.PlateID != nil {
		id := r.PlateID.String()
		plateID = &id
	}
	return ReadInfo{
		ID:                  r.ID.String(),
		PlateID:             plateID,
		CameraID:            r.CameraID,
		TrackID:             r.TrackID,
		ClassName:           r.ClassName,
		Plate:               r.Text,
		PlateKey:            r.PlateKey,
		Confidence:          r.Confidence,
		DetectionConfidence: r.DetectionConfidence,
		SnapshotURL:         r.SnapshotURL,
		EntryDate:           r.EntryDate,
		EntryTime:           r.EntryTime,
		EmittedAt:           r.EmittedAt,
	}
}

// CleanupOldReads removes reads older than days.
func (s *RecordService) CleanupOldReads(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}
	deleted, err := s.repo.DeleteOldReads(ctx, days)
	if err != nil {
		s.log.Error().Err(err).Int("days", days).Msg("failed to cleanup old reads")
		return 0, err
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted_count", deleted).Int("days", days).Msg("cleaned up old reads")
	}
	return deleted, nil
}

// SyncVehicleToWhitelist puts a registered vehicle's plate on the default whitelist.
func (s *RecordService) SyncVehicleToWhitelist(ctx context.Context, plateNumber string) (uuid.UUID, error) {
	original := utils.NormalizePlate(strings.TrimSpace(plateNumber))
	key := utils.PlateKey(original)
	if key == "" {
		return uuid.Nil, fmt.Errorf("%w: plate_number cannot be empty", ErrInvalidInput)
	}

	plateID, err := s.repo.AddPlateToList(ctx, repository.DefaultWhitelist, repository.ListTypeWhitelist, key, original, whitelistNote)
	if err != nil {
		s.log.Error().Err(err).Str("plate_number", plateNumber).Msg("failed to sync vehicle to whitelist")
		return uuid.Nil, fmt.Errorf("sync vehicle to whitelist: %w", err)
	}

	s.log.Info().
		Str("plate_number", plateNumber).
		Str("plate_id", plateID.String()).
		Msg("vehicle synced to whitelist")

	return plateID, nil
}

type PlateInfo struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	Normalized   string     `json:"normalized"`
	LastReadTime *time.Time `json:"last_read_time,omitempty"`
}

type ReadInfo struct {
	ID                  string    `json:"id"`
	PlateID             *string   `json:"plate_id,omitempty"`
	CameraID            string    `json:"camera_id"`
	TrackID             int64     `json:"track_id"`
	ClassName           string    `json:"class_name"`
	Plate               string    `json:"plate"`
	PlateKey            string    `json:"plate_key"`
	Confidence          float64   `json:"confidence"`
	DetectionConfidence float64   `json:"detection_confidence"`
	SnapshotURL         *string   `json:"snapshot_url,omitempty"`
	EntryDate           string    `json:"entry_date"`
	EntryTime           string    `json:"entry_time"`
	EmittedAt           time.Time `json:"emitted_at"`
}
