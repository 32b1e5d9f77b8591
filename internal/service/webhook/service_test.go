package webhook

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chatforge/wagateway/internal/config"
	"github.com/chatforge/wagateway/internal/domain/models"
	"github.com/chatforge/wagateway/pkg/clients/graph"
)

type fakeStore struct {
	messages       []models.MessageRecord
	statusUpdates  []string
	templates      []models.TemplateStatus
	client         *models.WhatsAppClient
	saveMessageErr error
}

func (f *fakeStore) SaveMessage(_ context.Context, record models.MessageRecord) error {
	if f.saveMessageErr != nil {
		return f.saveMessageErr
	}
	f.messages = append(f.messages, record)
	return nil
}

func (f *fakeStore) UpdateMessageStatus(_ context.Context, messageID, status, statusError string) error {
	f.statusUpdates = append(f.statusUpdates, messageID+"/"+status+"/"+statusError)
	return nil
}

func (f *fakeStore) SaveTemplateStatus(_ context.Context, status models.TemplateStatus) error {
	f.templates = append(f.templates, status)
	return nil
}

func (f *fakeStore) FindClientByPhoneNumberID(_ context.Context, _ string) (*models.WhatsAppClient, error) {
	return f.client, nil
}

type fakeGraph struct {
	sent    []graph.SendTextMessageRequest
	tokens  []string
	sendErr error
}

func (f *fakeGraph) SubscribeApp(context.Context, string, string) (*graph.SubscribeAppResponse, error) {
	return &graph.SubscribeAppResponse{Success: true}, nil
}

func (f *fakeGraph) ShareCreditLine(context.Context, string, string, string) (*graph.ShareCreditLineResponse, error) {
	return &graph.ShareCreditLineResponse{}, nil
}

func (f *fakeGraph) RegisterPhone(context.Context, string, string, string) error {
	return nil
}

func (f *fakeGraph) GetPhoneDetails(context.Context, string, string) (*graph.PhoneDetails, error) {
	return &graph.PhoneDetails{}, nil
}

func (f *fakeGraph) SendTextMessage(_ context.Context, _ string, token string, req graph.SendTextMessageRequest) (*graph.SendTextMessageResponse, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, req)
	f.tokens = append(f.tokens, token)
	return &graph.SendTextMessageResponse{}, nil
}

type fakeGenerator struct {
	reply string
}

func (f *fakeGenerator) Reply(context.Context, models.MessageRecord, models.WhatsAppClient) (string, error) {
	return f.reply, nil
}

func newTestDispatcher(store *fakeStore, gc *fakeGraph, gen *fakeGenerator) *Dispatcher {
	cfg := &config.Config{}
	cfg.Webhook.VerifyToken = "verify-token"
	cfg.Facebook.AccessToken = "default-token"
	return NewDispatcher(cfg, store, gc, gen, nil, zap.NewNop())
}

func messagesPayload(msg models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{
		Object: models.ObjectWhatsAppBusinessAccount,
		Entry: []models.WebhookEntry{{
			ID: "waba-1",
			Changes: []models.WebhookChange{{
				Field: models.FieldMessages,
				Value: models.WebhookValue{
					Metadata: models.Metadata{PhoneNumberID: "pn-1", DisplayPhoneNumber: "+1 555 0100"},
					Contacts: []models.Contact{{WaID: "15550123", Profile: models.ContactProfile{Name: "Ada"}}},
					Messages: []models.InboundMessage{msg},
				},
			}},
		}},
	}
}

func TestVerifyWebhookToken(t *testing.T) {
	d := newTestDispatcher(&fakeStore{}, &fakeGraph{}, &fakeGenerator{})

	challenge, err := d.VerifyWebhookToken("subscribe", "verify-token", "challenge-42")
	if err != nil {
		t.Fatalf("expected handshake to pass, got %v", err)
	}
	if challenge != "challenge-42" {
		t.Fatalf("challenge = %q, want %q", challenge, "challenge-42")
	}

	if _, err := d.VerifyWebhookToken("subscribe", "wrong", "c"); err == nil {
		t.Fatalf("expected token mismatch to fail")
	}
	if _, err := d.VerifyWebhookToken("unsubscribe", "verify-token", "c"); err == nil {
		t.Fatalf("expected unsupported mode to fail")
	}
	if _, err := d.VerifyWebhookToken("", "", "c"); err == nil {
		t.Fatalf("expected missing params to fail")
	}
}

func TestProcessWebhook_IgnoresForeignObjects(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, &fakeGraph{}, &fakeGenerator{})

	payload := messagesPayload(models.InboundMessage{ID: "m1", Type: "text", Text: &models.TextContent{Body: "hi"}})
	payload.Object = "page"

	if err := d.ProcessWebhook(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.messages) != 0 {
		t.Fatalf("expected no messages stored, got %d", len(store.messages))
	}
}

func TestProcessWebhook_PersistsNormalizedMessage(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, &fakeGraph{}, &fakeGenerator{})

	msg := models.InboundMessage{
		ID: "wamid.1", From: "15550123", Timestamp: "1700000000",
		Type: "image", Image: &models.MediaContent{ID: "media-9"},
	}
	if err := d.ProcessWebhook(context.Background(), messagesPayload(msg)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(store.messages))
	}
	got := store.messages[0]
	if got.DisplayContent != "[Image]" {
		t.Fatalf("DisplayContent = %q, want %q", got.DisplayContent, "[Image]")
	}
	if got.MediaID != "media-9" {
		t.Fatalf("MediaID = %q, want %q", got.MediaID, "media-9")
	}
	if got.ContactName != "Ada" {
		t.Fatalf("ContactName = %q, want %q", got.ContactName, "Ada")
	}
	if got.PhoneNumberID != "pn-1" {
		t.Fatalf("PhoneNumberID = %q, want %q", got.PhoneNumberID, "pn-1")
	}
}

func TestProcessWebhook_StatusUpdate(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, &fakeGraph{}, &fakeGenerator{})

	payload := models.WebhookPayload{
		Object: models.ObjectWhatsAppBusinessAccount,
		Entry: []models.WebhookEntry{{
			ID: "waba-1",
			Changes: []models.WebhookChange{{
				Field: models.FieldMessages,
				Value: models.WebhookValue{
					Statuses: []models.MessageStatus{{
						ID: "wamid.2", Status: "failed", RecipientID: "15550123",
						Errors: []models.WebhookError{{Code: 131026, Title: "Message undeliverable"}},
					}},
				},
			}},
		}},
	}

	if err := d.ProcessWebhook(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.statusUpdates) != 1 {
		t.Fatalf("expected 1 status update, got %d", len(store.statusUpdates))
	}
	want := "wamid.2/failed/131026: Message undeliverable"
	if store.statusUpdates[0] != want {
		t.Fatalf("status update = %q, want %q", store.statusUpdates[0], want)
	}
}

func TestProcessWebhook_TemplateStatusUpdate(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, &fakeGraph{}, &fakeGenerator{})

	payload := models.WebhookPayload{
		Object: models.ObjectWhatsAppBusinessAccount,
		Entry: []models.WebhookEntry{{
			ID: "waba-7",
			Changes: []models.WebhookChange{{
				Field: models.FieldTemplateStatusUpdate,
				Value: models.WebhookValue{
					Event:                   "REJECTED",
					MessageTemplateID:       42,
					MessageTemplateName:     "order_update",
					MessageTemplateLanguage: "en_US",
					Reason:                  "INVALID_FORMAT",
				},
			}},
		}},
	}

	if err := d.ProcessWebhook(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.templates) != 1 {
		t.Fatalf("expected 1 template status, got %d", len(store.templates))
	}
	got := store.templates[0]
	if got.TemplateID != 42 || got.Event != "REJECTED" || got.WABAID != "waba-7" {
		t.Fatalf("unexpected template status %+v", got)
	}
}

func TestProcessWebhook_UnknownFieldSkipped(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, &fakeGraph{}, &fakeGenerator{})

	payload := models.WebhookPayload{
		Object: models.ObjectWhatsAppBusinessAccount,
		Entry: []models.WebhookEntry{{
			ID:      "waba-1",
			Changes: []models.WebhookChange{{Field: "account_update"}},
		}},
	}

	if err := d.ProcessWebhook(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.messages)+len(store.statusUpdates)+len(store.templates) != 0 {
		t.Fatalf("expected no store activity for unknown field")
	}
}

func TestProcessWebhook_AutoReplyUsesClientToken(t *testing.T) {
	store := &fakeStore{client: &models.WhatsAppClient{
		PhoneNumberID: "pn-1",
		BusinessToken: "client-token",
		AutoReply:     true,
	}}
	gc := &fakeGraph{}
	d := newTestDispatcher(store, gc, &fakeGenerator{reply: "thanks!"})

	msg := models.InboundMessage{ID: "m1", From: "15550123", Type: "text", Text: &models.TextContent{Body: "hi"}}
	if err := d.ProcessWebhook(context.Background(), messagesPayload(msg)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gc.sent) != 1 {
		t.Fatalf("expected 1 auto-reply, got %d", len(gc.sent))
	}
	if gc.sent[0].To != "15550123" || gc.sent[0].Body != "thanks!" {
		t.Fatalf("unexpected auto-reply %+v", gc.sent[0])
	}
	if gc.tokens[0] != "client-token" {
		t.Fatalf("expected client token, got %q", gc.tokens[0])
	}
}

func TestProcessWebhook_NoAutoReplyForUnknownNumber(t *testing.T) {
	store := &fakeStore{}
	gc := &fakeGraph{}
	d := newTestDispatcher(store, gc, &fakeGenerator{reply: "thanks!"})

	msg := models.InboundMessage{ID: "m1", From: "15550123", Type: "text", Text: &models.TextContent{Body: "hi"}}
	if err := d.ProcessWebhook(context.Background(), messagesPayload(msg)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gc.sent) != 0 {
		t.Fatalf("expected no auto-reply, got %d", len(gc.sent))
	}
}

func TestProcessWebhook_ReportsFirstError(t *testing.T) {
	store := &fakeStore{saveMessageErr: errors.New("db down")}
	d := newTestDispatcher(store, &fakeGraph{}, &fakeGenerator{})

	msg := models.InboundMessage{ID: "m1", From: "15550123", Type: "text", Text: &models.TextContent{Body: "hi"}}
	if err := d.ProcessWebhook(context.Background(), messagesPayload(msg)); err == nil {
		t.Fatalf("expected persistence error to surface")
	}
}

func TestSendOutbound_PrefersStoredClientToken(t *testing.T) {
	store := &fakeStore{client: &models.WhatsAppClient{PhoneNumberID: "pn-1", BusinessToken: "client-token"}}
	gc := &fakeGraph{}
	d := newTestDispatcher(store, gc, &fakeGenerator{})

	err := d.SendOutbound(context.Background(), models.OutboundMessageRequest{
		PhoneNumberID: "pn-1", To: "15550123", Message: "hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gc.tokens[0] != "client-token" {
		t.Fatalf("expected stored client token, got %q", gc.tokens[0])
	}
}
