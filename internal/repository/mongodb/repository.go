package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chatforge/wagateway/internal/domain/models"
)

const (
	clientsCollection   = "whatsapp_clients"
	messagesCollection  = "messages"
	templatesCollection = "message_templates"
)

// Repository persists onboarded clients, inbound messages and template
// statuses in MongoDB.
type Repository struct {
	client *mongo.Client
	dbName string
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{client: client, dbName: dbName}, nil
}

func (r *Repository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// UpsertClient stores or refreshes a client credential record keyed by phone number ID.
func (r *Repository) UpsertClient(ctx context.Context, client models.WhatsAppClient) error {
	client.UpdatedAt = time.Now().UTC()
	if client.OnboardedAt.IsZero() {
		client.OnboardedAt = client.UpdatedAt
	}

	filter := bson.M{"phone_number_id": client.PhoneNumberID}
	update := bson.M{"$set": client}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection(clientsCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert client %s: %w", client.PhoneNumberID, err)
	}
	return nil
}

// FindClientByPhoneNumberID looks up the client owning a Cloud API phone number.
// Returns (nil, nil) when no client is registered for the number.
func (r *Repository) FindClientByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.WhatsAppClient, error) {
	var client models.WhatsAppClient
	err := r.collection(clientsCollection).
		FindOne(ctx, bson.M{"phone_number_id": phoneNumberID}).
		Decode(&client)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client %s: %w", phoneNumberID, err)
	}
	return &client, nil
}

// ListClients returns all onboarded clients.
func (r *Repository) ListClients(ctx context.Context) ([]models.WhatsAppClient, error) {
	cursor, err := r.collection(clientsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer cursor.Close(ctx)

	var clients []models.WhatsAppClient
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %w", err)
	}
	return clients, nil
}

// UpdatePhoneDetails refreshes the display attributes fetched from the Graph API.
func (r *Repository) UpdatePhoneDetails(ctx context.Context, phoneNumberID, verifiedName, displayPhoneNumber, qualityRating string) error {
	update := bson.M{"$set": bson.M{
		"verified_name":        verifiedName,
		"display_phone_number": displayPhoneNumber,
		"quality_rating":       qualityRating,
		"updated_at":           time.Now().UTC(),
	}}

	if _, err := r.collection(clientsCollection).UpdateOne(ctx, bson.M{"phone_number_id": phoneNumberID}, update); err != nil {
		return fmt.Errorf("failed to update phone details %s: %w", phoneNumberID, err)
	}
	return nil
}

// SaveMessage stores a normalized inbound message record.
func (r *Repository) SaveMessage(ctx context.Context, record models.MessageRecord) error {
	record.ReceivedAt = time.Now().UTC()
	if _, err := r.collection(messagesCollection).InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert message %s: %w", record.MessageID, err)
	}
	return nil
}

// UpdateMessageStatus applies a delivery/read receipt to a stored message.
func (r *Repository) UpdateMessageStatus(ctx context.Context, messageID, status, statusError string) error {
	update := bson.M{"$set": bson.M{
		"status":       status,
		"status_error": statusError,
	}}

	if _, err := r.collection(messagesCollection).UpdateOne(ctx, bson.M{"message_id": messageID}, update); err != nil {
		return fmt.Errorf("failed to update message status %s: %w", messageID, err)
	}
	return nil
}

// SaveTemplateStatus records the latest status event for a message template.
func (r *Repository) SaveTemplateStatus(ctx context.Context, status models.TemplateStatus) error {
	status.UpdatedAt = time.Now().UTC()

	filter := bson.M{"template_id": status.TemplateID, "language": status.Language}
	update := bson.M{"$set": status}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection(templatesCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert template status %d: %w", status.TemplateID, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
