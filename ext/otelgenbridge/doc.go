// Package otelgenbridge decorates a genbridge.Provider with OpenTelemetry tracing.
//
// Wrap returns a Provider whose models and conversations open one span per vendor call:
// genbridge.generate, genbridge.generate_stream, genbridge.count_tokens, genbridge.start_chat,
// genbridge.chat.send and genbridge.chat.send_stream. Stream spans start when the sequence is
// ranged over and end when it stops. Message contents and API keys are never recorded.
package otelgenbridge
