package webhook

import (
	"strconv"

	"github.com/chatforge/wagateway/internal/domain/models"
)

// NormalizedMessage is the flattened view of an inbound message used for
// storage and display.
type NormalizedMessage struct {
	DisplayContent string
	RawType        string
	MediaID        string
}

// Normalize maps every supported inbound message type to a single display
// string. Media assets are referenced by ID only; fetching them belongs to a
// media service.
func Normalize(msg models.InboundMessage) NormalizedMessage {
	out := NormalizedMessage{RawType: msg.Type}

	switch msg.Type {
	case models.MessageTypeText:
		if msg.Text != nil {
			out.DisplayContent = msg.Text.Body
		}
	case models.MessageTypeImage:
		out.DisplayContent = "[Image]"
		if msg.Image != nil {
			out.MediaID = msg.Image.ID
			if msg.Image.Caption != "" {
				out.DisplayContent = msg.Image.Caption
			}
		}
	case models.MessageTypeAudio:
		out.DisplayContent = "[Voice message]"
		if msg.Audio != nil {
			out.MediaID = msg.Audio.ID
		}
	case models.MessageTypeVideo:
		out.DisplayContent = "[Video]"
		if msg.Video != nil {
			out.MediaID = msg.Video.ID
			if msg.Video.Caption != "" {
				out.DisplayContent = msg.Video.Caption
			}
		}
	case models.MessageTypeDocument:
		filename := ""
		if msg.Document != nil {
			out.MediaID = msg.Document.ID
			filename = msg.Document.Filename
		}
		out.DisplayContent = "[Document: " + filename + "]"
	case models.MessageTypeLocation:
		lat, lon := "", ""
		if msg.Location != nil {
			lat = strconv.FormatFloat(msg.Location.Latitude, 'f', -1, 64)
			lon = strconv.FormatFloat(msg.Location.Longitude, 'f', -1, 64)
		}
		out.DisplayContent = "[Location: " + lat + ", " + lon + "]"
	case models.MessageTypeButton:
		if msg.Button != nil {
			out.DisplayContent = msg.Button.Text
		}
	case models.MessageTypeInteractive:
		if msg.Interactive != nil {
			switch msg.Interactive.Type {
			case "button_reply":
				if msg.Interactive.ButtonReply != nil {
					out.DisplayContent = msg.Interactive.ButtonReply.Title
				}
			case "list_reply":
				if msg.Interactive.ListReply != nil {
					out.DisplayContent = msg.Interactive.ListReply.Title
				}
			}
		}
	default:
		out.DisplayContent = "[Unsupported message type: " + msg.Type + "]"
	}

	return out
}
