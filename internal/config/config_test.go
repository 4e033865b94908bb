package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"anpr-crossing/internal/geometry"
)

func validViper() *viper.Viper {
	v := viper.New()
	v.Set("DB_DSN", "postgres://anpr@localhost/anpr")
	v.Set("JWT_ACCESS_SECRET", "secret")
	v.Set("VIDEO_SOURCE", "data/videos/tc.mp4")
	v.Set("DETECTOR_URL", "http://localhost:9000")
	v.Set("RECOGNIZER_URL", "http://localhost:9001")
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(validViper())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, "postgres", cfg.DB.Driver)
	require.Equal(t, 1020, cfg.Video.FrameWidth)
	require.Equal(t, 500, cfg.Video.FrameHeight)
	require.Equal(t, 0.5, cfg.Recognition.ConfidenceThreshold)
	require.Equal(t, 160, cfg.Recognition.CropWidth)
	require.Equal(t, 50, cfg.Recognition.CropHeight)
	require.Equal(t, "http", cfg.Recognition.Engine)
	require.Equal(t, "anpr-crossing-camera-001", cfg.MQTT.ClientID)
	require.Equal(t, DefaultZonePolygon, cfg.Detection.Zone.String())
}

func TestDegenerateZoneFailsLoad(t *testing.T) {
	v := validViper()
	v.Set("ZONE_POLYGON", "0,0;10,10;20,20")

	_, err := fromViper(v)
	require.True(t, errors.Is(err, geometry.ErrDegenerateZone), "got %v", err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "missing dsn", key: "DB_DSN", value: ""},
		{name: "unknown driver", key: "DB_DRIVER", value: "sqlite"},
		{name: "missing secret", key: "JWT_ACCESS_SECRET", value: ""},
		{name: "missing video", key: "VIDEO_SOURCE", value: ""},
		{name: "missing detector", key: "DETECTOR_URL", value: ""},
		{name: "threshold above one", key: "OCR_CONFIDENCE_THRESHOLD", value: 1.2},
		{name: "negative crop", key: "OCR_CROP_WIDTH", value: -1},
		{name: "unknown engine", key: "RECOGNIZER_ENGINE", value: "paddle"},
		{name: "http engine without url", key: "RECOGNIZER_URL", value: ""},
		{name: "malformed zone", key: "ZONE_POLYGON", value: "1,2;3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validViper()
			v.Set(tt.key, tt.value)
			_, err := fromViper(v)
			require.Error(t, err)
		})
	}
}

func TestTesseractEngineNeedsNoURL(t *testing.T) {
	v := validViper()
	v.Set("RECOGNIZER_ENGINE", "tesseract")
	v.Set("RECOGNIZER_URL", "")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, "tesseract", cfg.Recognition.Engine)
}
