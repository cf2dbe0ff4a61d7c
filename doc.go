// Package genbridge adapts a generative-AI SDK to the small surface mobile plugin bridges need:
// initialize a model, send one-shot or chat messages (optionally streamed), count tokens and
// read chat history.
//
// A Session moves through three states: StateUninitialized, StateModelReady after InitModel and
// StateChatReady after InitChat. Operations fail fast with ErrNotInitialized or
// ErrChatNotInitialized when called too early. The vendor SDK sits behind Provider; see
// adapter/gemini for the Google Gen AI implementation. Vendor errors are returned unmodified.
package genbridge
