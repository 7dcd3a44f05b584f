package services

import (
	"log/slog"

	"github.com/lumenlearn/attempt-service/internal/events"
	"github.com/lumenlearn/attempt-service/internal/repositories"
	appvalidator "github.com/lumenlearn/attempt-service/internal/validator"
)

type serviceManager struct {
	attempts  AttemptService
	grading   GradingService
	exports   ExportService
	publisher events.EventPublisher
}

// NewServiceManager wires the services together over a shared repository and
// event publisher.
func NewServiceManager(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *appvalidator.Validator,
) ServiceManager {
	grading := NewGradingService(repo, logger)

	return &serviceManager{
		attempts:  NewAttemptService(repo, grading, publisher, logger, validator),
		grading:   grading,
		exports:   NewExportService(repo, logger),
		publisher: publisher,
	}
}

func (m *serviceManager) Attempts() AttemptService {
	return m.attempts
}

func (m *serviceManager) Grading() GradingService {
	return m.grading
}

func (m *serviceManager) Exports() ExportService {
	return m.exports
}

func (m *serviceManager) Close() error {
	if m.publisher != nil {
		return m.publisher.Close()
	}
	return nil
}
