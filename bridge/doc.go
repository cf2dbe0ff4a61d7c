// Package bridge exposes genbridge sessions to a mobile host through a handle-based API.
//
// Every method takes and returns plain strings, ints and errors so the package can be bound with
// gomobile. Structured values travel as JSON:
//
//	config:  {"modelName":"gemini-2.0-flash","apiKey":"…","temperature":0.4,"topK":40,"topP":0.95,
//	          "maxOutputTokens":1024,"stopSequences":["END"],
//	          "safetySettings":{"HARASSMENT":"NONE","HATE_SPEECH":"LOW_AND_ABOVE"}}
//	images:  [{"mimeType":"image/png","data":"<base64>"}]
//	history: [{"isUser":true,"text":"hi","images":[…]}]
//	turns:   [{"isUser":true,"parts":[{"type":"text","content":"hi"}]}]
//
// safetySettings keeps the key order of the host document. ErrorCode maps any returned error
// to a stable code the host can switch on.
package bridge
