package app

import (
	"fmt"

	"github.com/shrimpsizemoose/lussekatt/internal/events"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

type Service struct {
	Config *Config
	Store  store.Store
	Events *events.Publisher
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	var publisher *events.Publisher
	if config.Events.RedisURL != "" {
		publisher, err = events.NewPublisher(config.Events.RedisURL, config.Events.Stream)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to init event publisher: %w", err)
		}
	}

	return &Service{
		Config: config,
		Store:  store,
		Events: publisher,
	}, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if s.Events != nil {
		if err := s.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
