package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"anpr-crossing/internal/geometry"
)

const DefaultZonePolygon = "5,180;3,249;984,237;950,168"

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type VideoConfig struct {
	Source      string
	FrameWidth  int
	FrameHeight int
}

type DetectionConfig struct {
	Zone           *geometry.Zone
	ClassNamesPath string
	DetectorURL    string
}

type RecognitionConfig struct {
	Engine              string
	URL                 string
	Language            string
	ConfidenceThreshold float64
	CropWidth           int
	CropHeight          int
}

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	PublicBaseURL string
}

type Config struct {
	Environment   string
	CameraID      string
	RetentionDays int
	HTTP          HTTPConfig
	DB            DBConfig
	Auth          AuthConfig
	Video         VideoConfig
	Detection     DetectionConfig
	Recognition   RecognitionConfig
	MQTT          MQTTConfig
	Storage       StorageConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CAMERA_ID", "camera-001")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("FRAME_WIDTH", 1020)
	v.SetDefault("FRAME_HEIGHT", 500)
	v.SetDefault("ZONE_POLYGON", DefaultZonePolygon)
	v.SetDefault("CLASS_NAMES_PATH", "config/class_names.txt")
	v.SetDefault("OCR_CONFIDENCE_THRESHOLD", 0.5)
	v.SetDefault("OCR_CROP_WIDTH", 160)
	v.SetDefault("OCR_CROP_HEIGHT", 50)
	v.SetDefault("RECOGNIZER_ENGINE", "http")
	v.SetDefault("TESSERACT_LANGUAGE", "eng")
	v.SetDefault("MQTT_TOPIC", "anpr/plates")
	v.SetDefault("R2_REGION", "auto")

	cfg := &Config{
		Environment:   v.GetString("APP_ENV"),
		CameraID:      v.GetString("CAMERA_ID"),
		RetentionDays: v.GetInt("RETENTION_DAYS"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Video: VideoConfig{
			Source:      v.GetString("VIDEO_SOURCE"),
			FrameWidth:  v.GetInt("FRAME_WIDTH"),
			FrameHeight: v.GetInt("FRAME_HEIGHT"),
		},
		Detection: DetectionConfig{
			ClassNamesPath: v.GetString("CLASS_NAMES_PATH"),
			DetectorURL:    v.GetString("DETECTOR_URL"),
		},
		Recognition: RecognitionConfig{
			Engine:              strings.ToLower(v.GetString("RECOGNIZER_ENGINE")),
			URL:                 v.GetString("RECOGNIZER_URL"),
			Language:            v.GetString("TESSERACT_LANGUAGE"),
			ConfidenceThreshold: v.GetFloat64("OCR_CONFIDENCE_THRESHOLD"),
			CropWidth:           v.GetInt("OCR_CROP_WIDTH"),
			CropHeight:          v.GetInt("OCR_CROP_HEIGHT"),
		},
		MQTT: MQTTConfig{
			Broker:   v.GetString("MQTT_BROKER"),
			Topic:    v.GetString("MQTT_TOPIC"),
			ClientID: v.GetString("MQTT_CLIENT_ID"),
		},
		Storage: StorageConfig{
			Endpoint:      strings.TrimSpace(v.GetString("R2_ENDPOINT")),
			AccessKey:     strings.TrimSpace(v.GetString("R2_ACCESS_KEY_ID")),
			SecretKey:     strings.TrimSpace(v.GetString("R2_SECRET_ACCESS_KEY")),
			Bucket:        strings.TrimSpace(v.GetString("R2_BUCKET")),
			Region:        strings.TrimSpace(v.GetString("R2_REGION")),
			PublicBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("R2_PUBLIC_BASE_URL")), "/"),
		},
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "anpr-crossing-" + cfg.CameraID
	}

	points, err := geometry.ParsePolygon(v.GetString("ZONE_POLYGON"))
	if err != nil {
		return nil, fmt.Errorf("ZONE_POLYGON: %w", err)
	}
	zone, err := geometry.NewZone(points)
	if err != nil {
		return nil, fmt.Errorf("ZONE_POLYGON: %w", err)
	}
	cfg.Detection.Zone = zone

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "mysql" {
		return fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", cfg.DB.Driver)
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Video.Source == "" {
		return fmt.Errorf("VIDEO_SOURCE is required")
	}
	if cfg.Video.FrameWidth <= 0 || cfg.Video.FrameHeight <= 0 {
		return fmt.Errorf("FRAME_WIDTH and FRAME_HEIGHT must be positive")
	}
	if cfg.Detection.DetectorURL == "" {
		return fmt.Errorf("DETECTOR_URL is required")
	}
	if cfg.Detection.ClassNamesPath == "" {
		return fmt.Errorf("CLASS_NAMES_PATH is required")
	}
	t := cfg.Recognition.ConfidenceThreshold
	if t < 0 || t > 1 {
		return fmt.Errorf("OCR_CONFIDENCE_THRESHOLD must be within [0,1], got %v", t)
	}
	if cfg.Recognition.CropWidth <= 0 || cfg.Recognition.CropHeight <= 0 {
		return fmt.Errorf("OCR_CROP_WIDTH and OCR_CROP_HEIGHT must be positive")
	}
	switch cfg.Recognition.Engine {
	case "http":
		if cfg.Recognition.URL == "" {
			return fmt.Errorf("RECOGNIZER_URL is required for the http recognizer")
		}
	case "tesseract":
	default:
		return fmt.Errorf("RECOGNIZER_ENGINE must be http or tesseract, got %q", cfg.Recognition.Engine)
	}
	return nil
}
