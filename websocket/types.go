package websocket

// Message type values carried in the Type field of a progress message.
// The payload struct itself lives in types/websocket.go so that services
// and handlers can reference it without importing this package.
const (
	TypeProgress = "progress"
	TypeStatus   = "status"
	TypeComplete = "complete"
	TypeError    = "error"
)
