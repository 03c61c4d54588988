package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds process configuration, loaded from CHIME_* environment
// variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBPath   string `envconfig:"DB_PATH" default:"chime.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Web push. Both keys must be set for push delivery to be enabled.
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`

	// Encrypted off-site backups.
	BackupPassphrase string `envconfig:"BACKUP_PASSPHRASE"`
	S3Endpoint       string `envconfig:"S3_ENDPOINT"`
	S3Bucket         string `envconfig:"S3_BUCKET"`
	S3Region         string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("chime", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// PushEnabled reports whether both VAPID keys are configured.
func (c Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
