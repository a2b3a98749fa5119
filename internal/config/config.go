package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	NATS        NATSConfig        `yaml:"nats"`
	MinIO       MinIOConfig       `yaml:"minio"`
	Vision      VisionConfig      `yaml:"vision"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Quality     QualityConfig     `yaml:"quality"`
	Enrollment  EnrollmentConfig  `yaml:"enrollment"`
	Notifier    NotifierConfig    `yaml:"notifier"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type VisionConfig struct {
	ModelsDir          string  `yaml:"models_dir"`
	DetectionThreshold float64 `yaml:"detection_threshold"`
	EnhanceImages      bool    `yaml:"enhance_images"`
}

// RecognitionConfig tunes the similarity scoring and match decision.
type RecognitionConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	TopK                int     `yaml:"top_k"`
	CosineWeight        float64 `yaml:"cosine_weight"`
	L2Weight            float64 `yaml:"l2_weight"`
	PoseAngleThreshold  float64 `yaml:"pose_angle_threshold"`
}

type QualityConfig struct {
	MinBrightness float64 `yaml:"min_brightness"`
	MaxBrightness float64 `yaml:"max_brightness"`
	MinFaceArea   float64 `yaml:"min_face_area"`
	MinSharpness  float64 `yaml:"min_sharpness"`
}

type EnrollmentConfig struct {
	MinValidSamples int `yaml:"min_valid_samples"`
	MaxSamples      int `yaml:"max_samples"`
}

type NotifierConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Workers    int    `yaml:"workers"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

// Default returns a config with all defaults applied and no file read.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Vision.DetectionThreshold == 0 {
		cfg.Vision.DetectionThreshold = 0.5
	}
	if cfg.Recognition.SimilarityThreshold == 0 {
		cfg.Recognition.SimilarityThreshold = 0.65
	}
	if cfg.Recognition.TopK == 0 {
		cfg.Recognition.TopK = 1
	}
	if cfg.Recognition.CosineWeight == 0 && cfg.Recognition.L2Weight == 0 {
		cfg.Recognition.CosineWeight = 1.0
	}
	if cfg.Recognition.PoseAngleThreshold == 0 {
		cfg.Recognition.PoseAngleThreshold = 20
	}
	if cfg.Quality.MinBrightness == 0 {
		cfg.Quality.MinBrightness = 50
	}
	if cfg.Quality.MaxBrightness == 0 {
		cfg.Quality.MaxBrightness = 220
	}
	if cfg.Quality.MinFaceArea == 0 {
		cfg.Quality.MinFaceArea = 10000
	}
	if cfg.Quality.MinSharpness == 0 {
		cfg.Quality.MinSharpness = 100
	}
	if cfg.Enrollment.MinValidSamples == 0 {
		cfg.Enrollment.MinValidSamples = 10
	}
	if cfg.Enrollment.MaxSamples == 0 {
		cfg.Enrollment.MaxSamples = 20
	}
	if cfg.Notifier.Workers == 0 {
		cfg.Notifier.Workers = 2
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATTEND_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ATTEND_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("ATTEND_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("ATTEND_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("ATTEND_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("ATTEND_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("ATTEND_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("ATTEND_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("ATTEND_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("ATTEND_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("ATTEND_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("ATTEND_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("ATTEND_MODELS_DIR"); v != "" {
		cfg.Vision.ModelsDir = v
	}
	if v := os.Getenv("ATTEND_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Recognition.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("ATTEND_WEBHOOK_URL"); v != "" {
		cfg.Notifier.WebhookURL = v
	}
}
