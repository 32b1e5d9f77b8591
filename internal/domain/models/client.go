package models

import "time"

// WhatsAppClient is the credential record persisted for an onboarded client,
// keyed by the Cloud API phone number ID.
type WhatsAppClient struct {
	PhoneNumberID      string    `bson:"phone_number_id" json:"phoneNumberId"`
	WABAID             string    `bson:"waba_id" json:"wabaId"`
	BusinessID         string    `bson:"business_id,omitempty" json:"businessId,omitempty"`
	BusinessToken      string    `bson:"business_token" json:"-"`
	BotID              string    `bson:"bot_id,omitempty" json:"botId,omitempty"`
	ClientName         string    `bson:"client_name,omitempty" json:"clientName,omitempty"`
	VerifiedName       string    `bson:"verified_name,omitempty" json:"verifiedName,omitempty"`
	DisplayPhoneNumber string    `bson:"display_phone_number,omitempty" json:"displayPhoneNumber,omitempty"`
	QualityRating      string    `bson:"quality_rating,omitempty" json:"qualityRating,omitempty"`
	AutoReply          bool      `bson:"auto_reply" json:"autoReply"`
	OnboardedAt        time.Time `bson:"onboarded_at" json:"onboardedAt"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updatedAt"`
}

// MessageRecord is the stored form of a normalized inbound message.
type MessageRecord struct {
	MessageID      string    `bson:"message_id" json:"messageId"`
	PhoneNumberID  string    `bson:"phone_number_id" json:"phoneNumberId"`
	From           string    `bson:"from" json:"from"`
	ContactName    string    `bson:"contact_name,omitempty" json:"contactName,omitempty"`
	Type           string    `bson:"type" json:"type"`
	DisplayContent string    `bson:"display_content" json:"displayContent"`
	MediaID        string    `bson:"media_id,omitempty" json:"mediaId,omitempty"`
	Status         string    `bson:"status,omitempty" json:"status,omitempty"`
	StatusError    string    `bson:"status_error,omitempty" json:"statusError,omitempty"`
	Timestamp      string    `bson:"timestamp" json:"timestamp"`
	ReceivedAt     time.Time `bson:"received_at" json:"receivedAt"`
}

// TemplateStatus captures a message_template_status_update notification.
type TemplateStatus struct {
	TemplateID   int64     `bson:"template_id" json:"templateId"`
	TemplateName string    `bson:"template_name" json:"templateName"`
	Language     string    `bson:"language" json:"language"`
	Event        string    `bson:"event" json:"event"`
	Reason       string    `bson:"reason,omitempty" json:"reason,omitempty"`
	WABAID       string    `bson:"waba_id" json:"wabaId"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	PhoneNumberID string `json:"phoneNumberId" binding:"required"`
	To            string `json:"to" binding:"required"`
	Message       string `json:"message" binding:"required"`
	PreviewURL    bool   `json:"preview_url"`
}
