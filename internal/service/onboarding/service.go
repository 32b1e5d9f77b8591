package onboarding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chatforge/wagateway/internal/config"
	"github.com/chatforge/wagateway/internal/domain/models"
	"github.com/chatforge/wagateway/pkg/clients/graph"
)

// ClientStore persists the assembled client record at the end of the sequence.
type ClientStore interface {
	UpsertClient(ctx context.Context, client models.WhatsAppClient) error
}

// Step is one unit of the onboarding sequence. Critical steps decide overall
// success; a Fatal step additionally stops the run when it fails. Run returns
// the payload recorded in the step result.
type Step struct {
	Name     string
	Critical bool
	Fatal    bool
	Run      func(ctx context.Context) (any, error)
}

// Service runs the fixed client onboarding sequence against the Graph API.
type Service struct {
	cfg    *config.Config
	graph  graph.Client
	store  ClientStore
	logger *zap.Logger
}

// NewService wires a new onboarding service.
func NewService(cfg *config.Config, graphClient graph.Client, store ClientStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:    cfg,
		graph:  graphClient,
		store:  store,
		logger: logger,
	}
}

// Onboard executes the five onboarding steps strictly in order, accumulating
// one result per executed step. Only phone registration aborts the sequence;
// every other failure is recorded and the run continues.
func (s *Service) Onboard(ctx context.Context, req models.OnboardingRequest) models.OnboardingOutcome {
	client := models.WhatsAppClient{
		PhoneNumberID: req.PhoneNumberID,
		WABAID:        req.WABAID,
		BusinessID:    req.BusinessID,
		BusinessToken: req.BusinessToken,
		BotID:         req.BotID,
		ClientName:    req.ClientName,
		AutoReply:     req.BotID != "",
	}

	var outcome models.OnboardingOutcome
	criticalOK := true

	for _, step := range s.steps(req, &client) {
		data, err := step.Run(ctx)

		result := models.StepResult{Step: step.Name, Success: err == nil, Data: data}
		if err != nil {
			result.Error = err.Error()
			s.logger.Warn("onboarding step failed",
				zap.String("step", step.Name),
				zap.String("waba_id", req.WABAID),
				zap.Error(err))
		} else {
			s.logger.Info("onboarding step completed", zap.String("step", step.Name))
		}
		outcome.Results = append(outcome.Results, result)

		if err != nil {
			if step.Critical {
				criticalOK = false
			}
			if step.Fatal {
				outcome.Success = false
				return outcome
			}
		}
	}

	outcome.Success = criticalOK
	return outcome
}

func (s *Service) steps(req models.OnboardingRequest, client *models.WhatsAppClient) []Step {
	return []Step{
		{
			Name:     models.StepWebhookSubscription,
			Critical: true,
			Run: func(ctx context.Context) (any, error) {
				resp, err := s.graph.SubscribeApp(ctx, req.WABAID, req.BusinessToken)
				if err != nil {
					return nil, err
				}
				return resp, nil
			},
		},
		{
			Name: models.StepCreditLineSharing,
			Run: func(ctx context.Context) (any, error) {
				if !s.cfg.CreditLineConfigured() {
					return map[string]any{"skipped": true}, nil
				}
				resp, err := s.graph.ShareCreditLine(ctx, s.cfg.Facebook.CreditLineID, req.WABAID, s.cfg.Facebook.SystemUserToken)
				if err != nil {
					return nil, err
				}
				return resp, nil
			},
		},
		{
			Name:     models.StepPhoneRegistration,
			Critical: true,
			Fatal:    true,
			Run: func(ctx context.Context) (any, error) {
				if err := s.graph.RegisterPhone(ctx, req.PhoneNumberID, req.PIN, req.BusinessToken); err != nil {
					return nil, err
				}
				return map[string]any{"registered": true}, nil
			},
		},
		{
			Name: models.StepPhoneDetails,
			Run: func(ctx context.Context) (any, error) {
				details, err := s.graph.GetPhoneDetails(ctx, req.PhoneNumberID, req.BusinessToken)
				if err != nil {
					return nil, err
				}
				client.VerifiedName = details.VerifiedName
				client.DisplayPhoneNumber = details.DisplayPhoneNumber
				client.QualityRating = details.QualityRating
				return details, nil
			},
		},
		{
			Name: models.StepCredentialPersistence,
			Run: func(ctx context.Context) (any, error) {
				if err := s.store.UpsertClient(ctx, *client); err != nil {
					return nil, fmt.Errorf("persist client credentials: %w", err)
				}
				return map[string]any{"phoneNumberId": client.PhoneNumberID}, nil
			},
		},
	}
}
