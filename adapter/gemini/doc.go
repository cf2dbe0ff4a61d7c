// Package gemini implements genbridge.Provider on the Google Gen AI SDK (google.golang.org/genai).
//
// One *genai.Client is built per API key and reused by later NewModel calls with the same key.
// Generation parameters are passed through unchanged except for narrowing: float64 values become
// float32 and MaxOutputTokens is clamped to the int32 range. Safety settings keep their order.
// Enum values the SDK does not know map to its "unspecified" sentinels.
package gemini
