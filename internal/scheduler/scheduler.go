package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chatforge/wagateway/internal/config"
	"github.com/chatforge/wagateway/internal/domain/models"
	"github.com/chatforge/wagateway/pkg/clients/graph"
)

// ClientStore is the persistence surface the refresh job needs.
type ClientStore interface {
	ListClients(ctx context.Context) ([]models.WhatsAppClient, error)
	UpdatePhoneDetails(ctx context.Context, phoneNumberID, verifiedName, displayPhoneNumber, qualityRating string) error
}

// Scheduler periodically refreshes phone number details for onboarded
// clients so quality-rating drops show up without waiting for a webhook.
type Scheduler struct {
	cron   *cron.Cron
	cfg    config.Config
	store  ClientStore
	graph  graph.Client
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, store ClientStore, graphClient graph.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:   cron.New(),
		cfg:    cfg,
		store:  store,
		graph:  graphClient,
		logger: logger,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Scheduler.QualityRefreshCron))

	_, err := s.cron.AddFunc(s.cfg.Scheduler.QualityRefreshCron, s.refreshPhoneDetails)
	if err != nil {
		s.logger.Error("failed to schedule quality refresh", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshPhoneDetails() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	clients, err := s.store.ListClients(ctx)
	if err != nil {
		s.logger.Error("failed to list clients for refresh", zap.Error(err))
		return
	}

	for _, client := range clients {
		token := client.BusinessToken
		if token == "" {
			token = s.cfg.Facebook.AccessToken
		}

		details, err := s.graph.GetPhoneDetails(ctx, client.PhoneNumberID, token)
		if err != nil {
			s.logger.Warn("failed to refresh phone details",
				zap.String("phone_number_id", client.PhoneNumberID),
				zap.Error(err))
			continue
		}

		if err := s.store.UpdatePhoneDetails(ctx, client.PhoneNumberID, details.VerifiedName, details.DisplayPhoneNumber, details.QualityRating); err != nil {
			s.logger.Warn("failed to persist refreshed phone details",
				zap.String("phone_number_id", client.PhoneNumberID),
				zap.Error(err))
			continue
		}

		if details.QualityRating != "" && details.QualityRating != client.QualityRating {
			s.logger.Info("phone quality rating changed",
				zap.String("phone_number_id", client.PhoneNumberID),
				zap.String("from", client.QualityRating),
				zap.String("to", details.QualityRating))
		}
	}
}
