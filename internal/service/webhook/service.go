package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chatforge/wagateway/internal/config"
	"github.com/chatforge/wagateway/internal/domain/models"
	"github.com/chatforge/wagateway/internal/service/reply"
	"github.com/chatforge/wagateway/pkg/clients/graph"
)

// Store is the persistence surface the webhook pipeline needs.
type Store interface {
	SaveMessage(ctx context.Context, record models.MessageRecord) error
	UpdateMessageStatus(ctx context.Context, messageID, status, statusError string) error
	SaveTemplateStatus(ctx context.Context, status models.TemplateStatus) error
	FindClientByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.WhatsAppClient, error)
}

// LeadExporter mirrors the Google Sheets appender; nil disables export.
type LeadExporter interface {
	ExportLead(ctx context.Context, record models.MessageRecord) error
}

// Service describes the operations the HTTP layer can perform.
type Service interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	ProcessWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Dispatcher routes webhook notifications by change field and runs the inbound
// message pipeline: normalize, persist, export, auto-reply.
type Dispatcher struct {
	cfg     *config.Config
	store   Store
	graph   graph.Client
	replies reply.Generator
	leads   LeadExporter
	logger  *zap.Logger
}

// NewDispatcher wires a new webhook dispatcher. leads may be nil.
func NewDispatcher(cfg *config.Config, store Store, graphClient graph.Client, replies reply.Generator, leads LeadExporter, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		cfg:     cfg,
		store:   store,
		graph:   graphClient,
		replies: replies,
		leads:   leads,
		logger:  logger,
	}
}

// VerifyWebhookToken validates the callback verification handshake and returns
// the challenge to echo.
func (d *Dispatcher) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != d.cfg.Webhook.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// ProcessWebhook walks the envelope in array order and dispatches each change
// by its field. Unknown fields and objects are skipped, never rejected.
func (d *Dispatcher) ProcessWebhook(ctx context.Context, payload models.WebhookPayload) error {
	if payload.Object != models.ObjectWhatsAppBusinessAccount {
		d.logger.Debug("ignoring webhook object", zap.String("object", payload.Object))
		return nil
	}

	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			var err error
			switch change.Field {
			case models.FieldMessages:
				err = d.processMessagesChange(ctx, change.Value)
			case models.FieldTemplateStatusUpdate:
				err = d.processTemplateStatus(ctx, entry.ID, change.Value)
			default:
				d.logger.Info("skipping unrecognized change field", zap.String("field", change.Field))
			}
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (d *Dispatcher) processMessagesChange(ctx context.Context, value models.WebhookValue) error {
	contactNames := make(map[string]string, len(value.Contacts))
	for _, c := range value.Contacts {
		contactNames[c.WaID] = c.Profile.Name
	}

	var firstErr error

	for _, msg := range value.Messages {
		if err := d.handleInboundMessage(ctx, value.Metadata, contactNames[msg.From], msg); err != nil {
			d.logger.Error("failed to handle inbound message",
				zap.Error(err),
				zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	for _, status := range value.Statuses {
		if err := d.handleStatusUpdate(ctx, status); err != nil {
			d.logger.Error("failed to apply status update",
				zap.Error(err),
				zap.String("message_id", status.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (d *Dispatcher) handleInboundMessage(ctx context.Context, meta models.Metadata, contactName string, msg models.InboundMessage) error {
	normalized := Normalize(msg)

	d.logger.Info("inbound message",
		zap.String("from", msg.From),
		zap.String("type", normalized.RawType),
		zap.String("phone_number_id", meta.PhoneNumberID))

	record := models.MessageRecord{
		MessageID:      msg.ID,
		PhoneNumberID:  meta.PhoneNumberID,
		From:           msg.From,
		ContactName:    contactName,
		Type:           normalized.RawType,
		DisplayContent: normalized.DisplayContent,
		MediaID:        normalized.MediaID,
		Timestamp:      msg.Timestamp,
	}

	if err := d.store.SaveMessage(ctx, record); err != nil {
		return fmt.Errorf("persist inbound message: %w", err)
	}

	if d.leads != nil {
		if err := d.leads.ExportLead(ctx, record); err != nil {
			// Lead export is best effort; the message is already stored.
			d.logger.Warn("lead export failed", zap.Error(err), zap.String("message_id", msg.ID))
		}
	}

	return d.maybeAutoReply(ctx, meta.PhoneNumberID, msg.From, record)
}

func (d *Dispatcher) maybeAutoReply(ctx context.Context, phoneNumberID, to string, record models.MessageRecord) error {
	client, err := d.store.FindClientByPhoneNumberID(ctx, phoneNumberID)
	if err != nil {
		return fmt.Errorf("lookup client for auto-reply: %w", err)
	}
	if client == nil || !client.AutoReply {
		return nil
	}

	body, err := d.replies.Reply(ctx, record, *client)
	if err != nil {
		return fmt.Errorf("generate auto-reply: %w", err)
	}
	if body == "" {
		return nil
	}

	token := client.BusinessToken
	if token == "" {
		token = d.cfg.Facebook.AccessToken
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := d.graph.SendTextMessage(sendCtx, phoneNumberID, token, graph.SendTextMessageRequest{
		To:   to,
		Body: body,
	}); err != nil {
		return fmt.Errorf("send auto-reply: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleStatusUpdate(ctx context.Context, status models.MessageStatus) error {
	statusError := ""
	if len(status.Errors) > 0 {
		statusError = fmt.Sprintf("%d: %s", status.Errors[0].Code, status.Errors[0].Title)
	}

	d.logger.Info("message status update",
		zap.String("message_id", status.ID),
		zap.String("status", status.Status),
		zap.String("recipient_id", status.RecipientID))

	return d.store.UpdateMessageStatus(ctx, status.ID, status.Status, statusError)
}

func (d *Dispatcher) processTemplateStatus(ctx context.Context, wabaID string, value models.WebhookValue) error {
	d.logger.Info("template status update",
		zap.String("template", value.MessageTemplateName),
		zap.String("event", value.Event))

	return d.store.SaveTemplateStatus(ctx, models.TemplateStatus{
		TemplateID:   value.MessageTemplateID,
		TemplateName: value.MessageTemplateName,
		Language:     value.MessageTemplateLanguage,
		Event:        value.Event,
		Reason:       value.Reason,
		WABAID:       wabaID,
	})
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (d *Dispatcher) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	token := d.cfg.Facebook.AccessToken

	client, err := d.store.FindClientByPhoneNumberID(ctx, req.PhoneNumberID)
	if err != nil {
		return fmt.Errorf("lookup sender client: %w", err)
	}
	if client != nil && client.BusinessToken != "" {
		token = client.BusinessToken
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = d.graph.SendTextMessage(ctxWithTimeout, req.PhoneNumberID, token, graph.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}
