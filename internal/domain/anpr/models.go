package anpr

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"anpr-crossing/internal/geometry"
)

var ErrMalformedDetection = errors.New("malformed detection")

const (
	EntryDateLayout = "2006-01-02"
	EntryTimeLayout = "15:04:05"
)

// Detection is one tracked object reported by the detector for a single frame.
type Detection struct {
	Box        geometry.Box `json:"box"`
	ClassID    int          `json:"class_id"`
	TrackID    int64        `json:"track_id"`
	Confidence float64      `json:"confidence"`
}

type Fragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognition is the raw recognizer output for one crop, fragments in reading order.
type Recognition struct {
	Fragments []Fragment `json:"fragments"`
}

// Combine joins the fragment texts in order and returns the confidence of the last
// fragment. ok is false when no text was recognized.
func (r *Recognition) Combine() (text string, confidence float64, ok bool) {
	if r == nil || len(r.Fragments) == 0 {
		return "", 0, false
	}
	var sb strings.Builder
	for _, f := range r.Fragments {
		sb.WriteString(f.Text)
		confidence = f.Confidence
	}
	text = sb.String()
	if text == "" {
		return "", 0, false
	}
	return text, confidence, true
}

// PlateRecord is emitted once per accepted crossing and handed to the record sink.
type PlateRecord struct {
	ID                  uuid.UUID    `json:"id"`
	Text                string       `json:"text"`
	EntryDate           string       `json:"entry_date"`
	EntryTime           string       `json:"entry_time"`
	EmittedAt           time.Time    `json:"emitted_at"`
	CameraID            string       `json:"camera_id"`
	TrackID             int64        `json:"track_id"`
	ClassName           string       `json:"class_name"`
	Confidence          float64      `json:"confidence"`
	DetectionConfidence float64      `json:"detection_confidence"`
	Box                 geometry.Box `json:"box"`
	Snapshot            []byte       `json:"-"`
}

// NewPlateRecord stamps the record with the date and time of at.
func NewPlateRecord(text string, at time.Time) PlateRecord {
	return PlateRecord{
		ID:        uuid.New(),
		Text:      text,
		EntryDate: at.Format(EntryDateLayout),
		EntryTime: at.Format(EntryTimeLayout),
		EmittedAt: at,
	}
}

type ListHit struct {
	ListID   uuid.UUID `json:"list_id"`
	ListName string    `json:"list_name"`
	ListType string    `json:"list_type"`
}
