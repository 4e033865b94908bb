package sink

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anpr-crossing/internal/domain/anpr"
	"anpr-crossing/internal/utils"
)

type Store interface {
	GetOrCreatePlate(ctx context.Context, key, original string) (uuid.UUID, error)
	CreatePlateRead(ctx context.Context, record anpr.PlateRecord, plateID uuid.UUID, plateKey, snapshotURL string) error
	FindListsForPlate(ctx context.Context, plateID uuid.UUID) ([]anpr.ListHit, error)
}

type SnapshotUploader interface {
	UploadSnapshot(ctx context.Context, record anpr.PlateRecord) (string, error)
}

// DatabaseSink persists plate records. Failures are logged and never returned.
type DatabaseSink struct {
	store    Store
	uploader SnapshotUploader
	log      zerolog.Logger
}

// NewDatabaseSink creates the sink; uploader may be nil when snapshot storage is disabled.
func NewDatabaseSink(store Store, uploader SnapshotUploader, log zerolog.Logger) *DatabaseSink {
	return &DatabaseSink{
		store:    store,
		uploader: uploader,
		log:      log.With().Str("component", "database_sink").Logger(),
	}
}

func (s *DatabaseSink) Append(ctx context.Context, record anpr.PlateRecord) {
	var snapshotURL string
	if s.uploader != nil && len(record.Snapshot) > 0 {
		url, err := s.uploader.UploadSnapshot(ctx, record)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("record_id", record.ID.String()).
				Msg("failed to upload plate snapshot, saving read without it")
		} else {
			snapshotURL = url
		}
	}

	key := utils.PlateKey(record.Text)
	var plateID uuid.UUID
	if key != "" {
		id, err := s.store.GetOrCreatePlate(ctx, key, record.Text)
		if err != nil {
			s.log.Error().
				Err(err).
				Str("plate", record.Text).
				Str("plate_key", key).
				Msg("failed to get or create plate")
			return
		}
		plateID = id
	}

	if err := s.store.CreatePlateRead(ctx, record, plateID, key, snapshotURL); err != nil {
		s.log.Error().
			Err(err).
			Str("record_id", record.ID.String()).
			Str("plate", record.Text).
			Msg("failed to save plate read")
		return
	}

	s.log.Info().
		Str("record_id", record.ID.String()).
		Str("plate", record.Text).
		Str("entry_date", record.EntryDate).
		Str("entry_time", record.EntryTime).
		Msg("saved plate read to database")

	if plateID == uuid.Nil {
		return
	}
	hits, err := s.store.FindListsForPlate(ctx, plateID)
	if err != nil {
		s.log.Error().Err(err).Str("plate_id", plateID.String()).Msg("failed to find lists for plate")
		return
	}
	for _, hit := range hits {
		s.log.Info().
			Str("plate", record.Text).
			Str("list_name", hit.ListName).
			Str("list_type", hit.ListType).
			Msg("plate found in list")
	}
}
