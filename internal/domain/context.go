package domain

// ConversationContext carries the session identity a recognition request runs
// under. It is supplied by the session/device layer and is read-only here.
type ConversationContext struct {
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
	Language  string `json:"language"`
}
