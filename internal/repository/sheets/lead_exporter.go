package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/chatforge/wagateway/internal/config"
	"github.com/chatforge/wagateway/internal/domain/models"
)

const leadRange = "Leads!A:F"

// LeadExporter appends inbound message rows to a Google Sheet so operators
// get a lightweight lead log without touching the database.
type LeadExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewLeadExporter builds a Google Sheets backed lead exporter.
func NewLeadExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*LeadExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &LeadExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportLead appends one row for a normalized inbound message.
func (e *LeadExporter) ExportLead(ctx context.Context, record models.MessageRecord) error {
	values := []interface{}{
		record.Timestamp,
		record.From,
		record.ContactName,
		record.Type,
		record.DisplayContent,
		record.PhoneNumberID,
	}
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, leadRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append lead row for %s: %w", record.MessageID, err)
	}

	e.logger.Debug("lead row appended", zap.String("message_id", record.MessageID))
	return nil
}
