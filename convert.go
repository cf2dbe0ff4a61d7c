package genbridge

import (
	"fmt"

	"github.com/skosovsky/genbridge/internal/media"
)

// MessageParts builds the part sequence of one outgoing message: the text part, then one
// inline-data part per image in input order.
func MessageParts(text string, images []ImageBlob, maxImageBytes int) ([]Part, error) {
	parts := make([]Part, 0, 1+len(images))
	parts = append(parts, TextPart{Text: text})
	return appendImageParts(parts, images, maxImageBytes)
}

// HistoryContents converts seed items to turns. Text parts are emitted only when Text is non-empty.
func HistoryContents(items []ChatHistoryItem, maxImageBytes int) ([]Content, error) {
	out := make([]Content, 0, len(items))
	for i, item := range items {
		c, err := optionalTurn(item.IsUser, item.Text, item.Images, maxImageBytes)
		if err != nil {
			return nil, fmt.Errorf("history item %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ChatTurns maps stored turns to the host representation, preserving order.
func ChatTurns(contents []Content) []ChatTurn {
	out := make([]ChatTurn, 0, len(contents))
	for _, c := range contents {
		turn := ChatTurn{
			IsUser: c.Role == RoleUser,
			Parts:  make([]ChatHistoryPart, 0, len(c.Parts)),
		}
		for _, p := range c.Parts {
			turn.Parts = append(turn.Parts, historyPart(p))
		}
		out = append(out, turn)
	}
	return out
}

func historyPart(p Part) ChatHistoryPart {
	switch x := p.(type) {
	case TextPart:
		return ChatHistoryPart{Type: PartTypeText, Content: x.Text}
	case InlineDataPart:
		return ChatHistoryPart{Type: x.MIMEType, Content: media.Encode(x.Data)}
	default:
		return ChatHistoryPart{Type: PartTypeText}
	}
}

func optionalTurn(isUser bool, text string, images []ImageBlob, maxImageBytes int) (Content, error) {
	role := RoleModel
	if isUser {
		role = RoleUser
	}
	parts := make([]Part, 0, 1+len(images))
	if text != "" {
		parts = append(parts, TextPart{Text: text})
	}
	parts, err := appendImageParts(parts, images, maxImageBytes)
	if err != nil {
		return Content{}, err
	}
	return Content{Role: role, Parts: parts}, nil
}

func appendImageParts(parts []Part, images []ImageBlob, maxImageBytes int) ([]Part, error) {
	for i, img := range images {
		data, mime, err := media.Decode(img.MIMEType, img.Data, maxImageBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %w", ErrInvalidImage, i, err)
		}
		parts = append(parts, InlineDataPart{MIMEType: mime, Data: data})
	}
	return parts, nil
}
