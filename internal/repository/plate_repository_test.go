package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"anpr-crossing/internal/domain/anpr"
	"anpr-crossing/internal/geometry"
)

func TestNewPlateRead(t *testing.T) {
	at := time.Date(2025, 2, 1, 8, 0, 1, 0, time.UTC)
	record := anpr.NewPlateRecord("AB 1234", at)
	record.CameraID = "camera-001"
	record.TrackID = 17
	record.ClassName = "numberplate"
	record.Confidence = 0.91
	record.DetectionConfidence = 0.77
	record.Box = geometry.Box{X1: 1, Y1: 2, X2: 3, Y2: 4}
	plateID := uuid.New()

	tests := []struct {
		name        string
		plateID     uuid.UUID
		snapshotURL string
		wantPlate   bool
		wantURL     bool
	}{
		{name: "with plate and snapshot", plateID: plateID, snapshotURL: "https://cdn/x.jpg", wantPlate: true, wantURL: true},
		{name: "without plate", plateID: uuid.Nil, snapshotURL: "", wantPlate: false, wantURL: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			read := newPlateRead(record, tt.plateID, "AB1234", tt.snapshotURL)

			if read.ID != record.ID {
				t.Errorf("ID = %v, want %v", read.ID, record.ID)
			}
			if read.Text != "AB 1234" || read.PlateKey != "AB1234" {
				t.Errorf("Text/PlateKey = %q/%q", read.Text, read.PlateKey)
			}
			if read.EntryDate != "2025-02-01" || read.EntryTime != "08:00:01" {
				t.Errorf("EntryDate/EntryTime = %q/%q", read.EntryDate, read.EntryTime)
			}
			if read.TrackID != 17 || read.ClassName != "numberplate" || read.CameraID != "camera-001" {
				t.Errorf("unexpected identity fields: %+v", read)
			}
			if (read.PlateID != nil) != tt.wantPlate {
				t.Errorf("PlateID set = %v, want %v", read.PlateID != nil, tt.wantPlate)
			}
			if (read.SnapshotURL != nil) != tt.wantURL {
				t.Errorf("SnapshotURL set = %v, want %v", read.SnapshotURL != nil, tt.wantURL)
			}
		})
	}
}
