package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	S3        S3Config
	WordPress WordPressConfig
	App       AppConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

type MongoConfig struct {
	URI        string
	Database   string
	RetryDelay time.Duration
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
	// PublicBaseURL is the browser-facing base the image edge serves assets
	// from; derived image URLs are built on top of it.
	PublicBaseURL string
}

type WordPressConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AppConfig struct {
	MaxUploadSize  int64
	AllowedFormats []string
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "stone")
	viper.SetDefault("MONGO_RETRY_DELAY", "5s")
	viper.SetDefault("S3_ENDPOINT", "localhost:9000")
	viper.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	viper.SetDefault("S3_USE_SSL", false)
	viper.SetDefault("S3_BUCKET_NAME", "scientists")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("ASSET_PUBLIC_URL", "http://localhost:9000/scientists")
	viper.SetDefault("WORDPRESS_BASE_URL", "http://localhost:8080")
	viper.SetDefault("WORDPRESS_TIMEOUT", "15s")
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 5*1024*1024) // 5MB
	viper.SetDefault("APP_ALLOWED_FORMATS", []string{".jpg", ".jpeg", ".png", ".gif"})

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:           viper.GetString("SERVER_HOST"),
			Port:           viper.GetString("SERVER_PORT"),
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Mongo: MongoConfig{
			URI:        viper.GetString("MONGO_URI"),
			Database:   viper.GetString("MONGO_DATABASE"),
			RetryDelay: viper.GetDuration("MONGO_RETRY_DELAY"),
		},
		S3: S3Config{
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          viper.GetBool("S3_USE_SSL"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
			Region:          viper.GetString("S3_REGION"),
			PublicBaseURL:   viper.GetString("ASSET_PUBLIC_URL"),
		},
		WordPress: WordPressConfig{
			BaseURL: viper.GetString("WORDPRESS_BASE_URL"),
			Timeout: viper.GetDuration("WORDPRESS_TIMEOUT"),
		},
		App: AppConfig{
			MaxUploadSize:  viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			AllowedFormats: viper.GetStringSlice("APP_ALLOWED_FORMATS"),
		},
	}

	return cfg, nil
}
