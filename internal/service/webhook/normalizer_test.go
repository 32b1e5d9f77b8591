package webhook

import (
	"testing"

	"github.com/chatforge/wagateway/internal/domain/models"
)

func TestNormalize_AllMessageTypes(t *testing.T) {
	tests := []struct {
		name        string
		msg         models.InboundMessage
		wantContent string
		wantType    string
		wantMediaID string
	}{
		{
			name:        "text body verbatim",
			msg:         models.InboundMessage{Type: "text", Text: &models.TextContent{Body: "hello there"}},
			wantContent: "hello there",
			wantType:    "text",
		},
		{
			name:        "image with caption",
			msg:         models.InboundMessage{Type: "image", Image: &models.MediaContent{ID: "media-1", Caption: "our storefront"}},
			wantContent: "our storefront",
			wantType:    "image",
			wantMediaID: "media-1",
		},
		{
			name:        "image without caption",
			msg:         models.InboundMessage{Type: "image", Image: &models.MediaContent{ID: "media-2"}},
			wantContent: "[Image]",
			wantType:    "image",
			wantMediaID: "media-2",
		},
		{
			name:        "audio",
			msg:         models.InboundMessage{Type: "audio", Audio: &models.MediaContent{ID: "media-3"}},
			wantContent: "[Voice message]",
			wantType:    "audio",
			wantMediaID: "media-3",
		},
		{
			name:        "video with caption",
			msg:         models.InboundMessage{Type: "video", Video: &models.MediaContent{ID: "media-4", Caption: "demo clip"}},
			wantContent: "demo clip",
			wantType:    "video",
			wantMediaID: "media-4",
		},
		{
			name:        "video without caption",
			msg:         models.InboundMessage{Type: "video", Video: &models.MediaContent{ID: "media-5"}},
			wantContent: "[Video]",
			wantType:    "video",
			wantMediaID: "media-5",
		},
		{
			name:        "document",
			msg:         models.InboundMessage{Type: "document", Document: &models.MediaContent{ID: "media-6", Filename: "invoice.pdf"}},
			wantContent: "[Document: invoice.pdf]",
			wantType:    "document",
			wantMediaID: "media-6",
		},
		{
			name:        "location",
			msg:         models.InboundMessage{Type: "location", Location: &models.LocationContent{Latitude: 40.7128, Longitude: -74.006}},
			wantContent: "[Location: 40.7128, -74.006]",
			wantType:    "location",
		},
		{
			name:        "button",
			msg:         models.InboundMessage{Type: "button", Button: &models.ButtonContent{Text: "Confirm order"}},
			wantContent: "Confirm order",
			wantType:    "button",
		},
		{
			name:        "button with empty text",
			msg:         models.InboundMessage{Type: "button", Button: &models.ButtonContent{}},
			wantContent: "",
			wantType:    "button",
		},
		{
			name: "interactive button reply",
			msg: models.InboundMessage{Type: "interactive", Interactive: &models.InteractiveContent{
				Type:        "button_reply",
				ButtonReply: &models.ButtonReply{ID: "opt-1", Title: "Yes please"},
			}},
			wantContent: "Yes please",
			wantType:    "interactive",
		},
		{
			name: "interactive list reply",
			msg: models.InboundMessage{Type: "interactive", Interactive: &models.InteractiveContent{
				Type:      "list_reply",
				ListReply: &models.ListReply{ID: "row-2", Title: "Pricing plans"},
			}},
			wantContent: "Pricing plans",
			wantType:    "interactive",
		},
		{
			name:        "interactive with unknown subtype",
			msg:         models.InboundMessage{Type: "interactive", Interactive: &models.InteractiveContent{Type: "nfm_reply"}},
			wantContent: "",
			wantType:    "interactive",
		},
		{
			name:        "unrecognized type",
			msg:         models.InboundMessage{Type: "sticker"},
			wantContent: "[Unsupported message type: sticker]",
			wantType:    "sticker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.msg)
			if got.DisplayContent != tt.wantContent {
				t.Fatalf("DisplayContent = %q, want %q", got.DisplayContent, tt.wantContent)
			}
			if got.RawType != tt.wantType {
				t.Fatalf("RawType = %q, want %q", got.RawType, tt.wantType)
			}
			if got.MediaID != tt.wantMediaID {
				t.Fatalf("MediaID = %q, want %q", got.MediaID, tt.wantMediaID)
			}
		})
	}
}

func TestNormalize_NilPayloadsDoNotPanic(t *testing.T) {
	for _, typ := range []string{"text", "image", "audio", "video", "document", "location", "button", "interactive"} {
		got := Normalize(models.InboundMessage{Type: typ})
		if got.RawType != typ {
			t.Fatalf("RawType = %q, want %q", got.RawType, typ)
		}
	}

	if got := Normalize(models.InboundMessage{Type: "document"}); got.DisplayContent != "[Document: ]" {
		t.Fatalf("DisplayContent = %q, want %q", got.DisplayContent, "[Document: ]")
	}
	if got := Normalize(models.InboundMessage{Type: "location"}); got.DisplayContent != "[Location: , ]" {
		t.Fatalf("DisplayContent = %q, want %q", got.DisplayContent, "[Location: , ]")
	}
}
