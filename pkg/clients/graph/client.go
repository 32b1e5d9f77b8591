package graph

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chatforge/wagateway/internal/config"
)

// Client exposes the Meta Graph API operations used by the application.
// Access tokens are passed per call because onboarding mixes the client's
// business token with the partner's system user token.
type Client interface {
	SubscribeApp(ctx context.Context, wabaID, token string) (*SubscribeAppResponse, error)
	ShareCreditLine(ctx context.Context, creditLineID, wabaID, token string) (*ShareCreditLineResponse, error)
	RegisterPhone(ctx context.Context, phoneNumberID, pin, token string) error
	GetPhoneDetails(ctx context.Context, phoneNumberID, token string) (*PhoneDetails, error)
	SendTextMessage(ctx context.Context, phoneNumberID, token string, req SendTextMessageRequest) (*SendTextMessageResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a Graph API client using the provided configuration values.
func NewClient(cfg config.GraphConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// SubscribeAppResponse mirrors the subscribed_apps success payload.
type SubscribeAppResponse struct {
	Success bool `json:"success"`
}

// ShareCreditLineResponse mirrors the credit sharing success payload.
type ShareCreditLineResponse struct {
	AllocationConfigID string `json:"allocation_config_id"`
	WABAID             string `json:"waba_id"`
}

// PhoneDetails holds the business phone number attributes surfaced to clients.
type PhoneDetails struct {
	ID                 string `json:"id"`
	VerifiedName       string `json:"verified_name"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	QualityRating      string `json:"quality_rating"`
}

// SendTextMessageRequest represents a simplified text message payload.
type SendTextMessageRequest struct {
	To         string
	Body       string
	PreviewURL bool
}

// SendTextMessageResponse mirrors the successful response from Meta.
type SendTextMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// apiError represents a Graph API error payload.
type apiError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// SubscribeApp subscribes the app to webhook events for the given WABA.
func (c *APIClient) SubscribeApp(ctx context.Context, wabaID, token string) (*SubscribeAppResponse, error) {
	result := new(SubscribeAppResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/subscribed_apps", wabaID))
	if err != nil {
		return nil, fmt.Errorf("subscribe app to waba %s: %w", wabaID, err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// ShareCreditLine attaches the partner credit line to the client's WABA so the
// partner covers messaging costs.
func (c *APIClient) ShareCreditLine(ctx context.Context, creditLineID, wabaID, token string) (*ShareCreditLineResponse, error) {
	result := new(ShareCreditLineResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"waba_id":       wabaID,
			"waba_currency": "USD",
		}).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/whatsapp_credit_sharing_and_attach", creditLineID))
	if err != nil {
		return nil, fmt.Errorf("share credit line %s with waba %s: %w", creditLineID, wabaID, err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// RegisterPhone activates the phone number on the Cloud API with the client's
// two-step verification PIN.
func (c *APIClient) RegisterPhone(ctx context.Context, phoneNumberID, pin, token string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"messaging_product": "whatsapp",
			"pin":               pin,
		}).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/register", phoneNumberID))
	if err != nil {
		return fmt.Errorf("register phone %s: %w", phoneNumberID, err)
	}

	return checkResponse(resp, apiErr)
}

// GetPhoneDetails fetches the verified name, display number and quality rating
// of a business phone number.
func (c *APIClient) GetPhoneDetails(ctx context.Context, phoneNumberID, token string) (*PhoneDetails, error) {
	result := new(PhoneDetails)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("fields", "verified_name,display_phone_number,quality_rating").
		SetResult(result).
		SetError(apiErr).
		Get(phoneNumberID)
	if err != nil {
		return nil, fmt.Errorf("fetch phone details %s: %w", phoneNumberID, err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// SendTextMessage sends a plain text message from the given phone number.
func (c *APIClient) SendTextMessage(ctx context.Context, phoneNumberID, token string, req SendTextMessageRequest) (*SendTextMessageResponse, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                req.To,
		"type":              "text",
		"text": map[string]any{
			"body":        req.Body,
			"preview_url": req.PreviewURL,
		},
	}

	result := new(SendTextMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", phoneNumberID))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

func checkResponse(resp *resty.Response, apiErr *apiError) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}

	message := ""
	code := resp.StatusCode()
	if apiErr != nil {
		message = apiErr.Error.Message
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
	}
	return fmt.Errorf("graph api error: code=%d, message=%s", code, message)
}
