package notifications

import (
	"context"
	"fmt"
	"sync"

	"venuely/internal/bookings"
	"venuely/internal/shared/config"
	"venuely/pkg/logger"
)

// Service owns the notification pipeline: it publishes booking lifecycle
// events to Kafka and runs the consumer workers that turn them into emails.
// It implements bookings.Notifier.
type Service interface {
	Publish(ctx context.Context, event bookings.NotificationEvent) error
	Start(ctx context.Context) error
	Stop() error
}

type service struct {
	producer Producer
	consumer Consumer
	workers  int
	logger   *logger.Logger

	mu        sync.Mutex
	isRunning bool
}

func NewService(kafkaCfg config.KafkaConfig, emailCfg config.EmailConfig, log *logger.Logger) (Service, error) {
	emailService, err := NewSMTPEmailService(emailCfg)
	if err != nil {
		return nil, err
	}

	producer, err := NewKafkaProducer(kafkaCfg)
	if err != nil {
		return nil, err
	}

	consumer, err := NewKafkaConsumer(kafkaCfg, emailService, log)
	if err != nil {
		producer.Close()
		return nil, err
	}

	return &service{
		producer: producer,
		consumer: consumer,
		workers:  kafkaCfg.ConsumerWorkers,
		logger:   log,
	}, nil
}

func (s *service) Publish(ctx context.Context, event bookings.NotificationEvent) error {
	notification := FromBookingEvent(event)
	return s.producer.Publish(ctx, notification)
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("notification service already running")
	}

	if err := s.consumer.Start(ctx, s.workers); err != nil {
		return fmt.Errorf("failed to start notification consumer: %w", err)
	}

	s.isRunning = true
	return nil
}

func (s *service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false

	if err := s.consumer.Stop(); err != nil {
		s.logger.Error("failed to stop notification consumer", "error", err)
	}
	return s.producer.Close()
}
