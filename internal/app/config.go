package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Events struct {
		RedisURL string `toml:"redis_url"`
		Stream   string `toml:"stream"`
		Group    string `toml:"group"`
		Consumer string `toml:"consumer"`
	} `toml:"events"`

	Seed struct {
		UsersFile string `toml:"users_file"`
	} `toml:"seed"`

	Notifier struct {
		StorageDir     string `toml:"storage_dir"`
		EmailBackend   string `toml:"email_backend"`
		SendgridKey    string `toml:"sendgrid_key"`
		FromEmail      string `toml:"from_email"`
		FromName       string `toml:"from_name"`
		TelegramToken  string `toml:"telegram_token"`
		TelegramChatID int64  `toml:"telegram_chat_id"`
	} `toml:"notifier"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :8080")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database DSN is not specified in config")
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}
	if config.Events.Stream == "" {
		config.Events.Stream = "submissions"
	}
	if config.Events.Group == "" {
		config.Events.Group = "notifier"
	}

	return &config, nil
}
