package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	LogLevel  string          `yaml:"log_level"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// PublicHost is the externally visible host used when building
	// download URLs, e.g. "kidala.live".
	PublicHost string `yaml:"public_host"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// UploadLockExpire bounds how long a per-hash upload lock may be
	// held, in seconds.
	UploadLockExpire int `yaml:"upload_lock_expire"`
}

type StorageConfig struct {
	BasePath      string `yaml:"base_path"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

type AuthConfig struct {
	// UserSecret signs tokens minted for anonymous uploaders,
	// AdminSecret signs tokens minted at admin login. A token only ever
	// verifies against the secret of its own trust domain.
	UserSecret  string `yaml:"user_secret"`
	AdminSecret string `yaml:"admin_secret"`
}

type ThumbnailConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Quality int `yaml:"quality"`
}

var AppConfig *Config

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	AppConfig = &cfg
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.PublicHost == "" {
		cfg.Server.PublicHost = "localhost"
	}
	if cfg.Database.Charset == "" {
		cfg.Database.Charset = "utf8mb4"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./data"
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 100 * 1000 * 1000
	}
	if cfg.Redis.UploadLockExpire == 0 {
		cfg.Redis.UploadLockExpire = 60
	}
	if cfg.Thumbnail.Width == 0 {
		cfg.Thumbnail.Width = 256
	}
	if cfg.Thumbnail.Height == 0 {
		cfg.Thumbnail.Height = 256
	}
	if cfg.Thumbnail.Quality == 0 {
		cfg.Thumbnail.Quality = 80
	}
}
