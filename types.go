package genbridge

import "slices"

// HarmCategory names a class of harmful content that a SafetySetting applies to.
type HarmCategory string

// Harm categories accepted from the host.
const (
	HarmCategoryHarassment       HarmCategory = "HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "DANGEROUS_CONTENT"
	HarmCategoryUnspecified      HarmCategory = "UNSPECIFIED"
)

// BlockLevel is the probability threshold at which content is blocked.
type BlockLevel string

// Block levels accepted from the host.
const (
	BlockNone           BlockLevel = "NONE"
	BlockOnlyHigh       BlockLevel = "ONLY_HIGH"
	BlockMediumAndAbove BlockLevel = "MEDIUM_AND_ABOVE"
	BlockLowAndAbove    BlockLevel = "LOW_AND_ABOVE"
	BlockUnspecified    BlockLevel = "UNSPECIFIED"
)

// SafetySetting pairs a harm category with a block level.
type SafetySetting struct {
	Category HarmCategory
	Level    BlockLevel
}

// ModelConfig configures a model handle. Nil tuning fields are left to the vendor default.
// SafetySettings keeps the order in which the host supplied its categories.
type ModelConfig struct {
	ModelName       string
	APIKey          string // secret; never logged
	Temperature     *float64
	TopK            *float64
	TopP            *float64
	MaxOutputTokens *int64
	StopSequences   []string
	SafetySettings  []SafetySetting
}

// Clone returns a deep copy of c so later mutation by the caller does not leak into a session.
func (c ModelConfig) Clone() ModelConfig {
	out := c
	out.Temperature = clonePtr(c.Temperature)
	out.TopK = clonePtr(c.TopK)
	out.TopP = clonePtr(c.TopP)
	out.MaxOutputTokens = clonePtr(c.MaxOutputTokens)
	out.StopSequences = slices.Clone(c.StopSequences)
	out.SafetySettings = slices.Clone(c.SafetySettings)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ImageBlob is an image attached to a single request. Data is base64-encoded.
type ImageBlob struct {
	MIMEType string
	Data     string
}

// ChatHistoryItem seeds one turn of a conversation in InitChat.
type ChatHistoryItem struct {
	IsUser bool
	Text   string
	Images []ImageBlob
}

// ChatHistoryPart is one piece of a stored turn.
// Type is "text" for text parts or the MIME type for inline data; inline data Content is base64.
type ChatHistoryPart struct {
	Type    string
	Content string
}

// PartTypeText is the ChatHistoryPart.Type of text parts.
const PartTypeText = "text"

// ChatTurn is one role-tagged entry of a conversation transcript.
type ChatTurn struct {
	IsUser bool
	Parts  []ChatHistoryPart
}

// Role is the author of a Content turn.
type Role string

// Turn roles understood by the vendor SDK.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is a sealed interface for message parts exchanged with a Provider.
type Part interface {
	isPart()
}

// TextPart holds plain text.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// InlineDataPart holds decoded binary media such as an image.
type InlineDataPart struct {
	MIMEType string
	Data     []byte
}

func (InlineDataPart) isPart() {}

// Content is one turn: a role and its ordered parts.
type Content struct {
	Role  Role
	Parts []Part
}
