package httpdto

// MarkReadRequest acknowledges a batch of messages as read by the
// authenticated user.
type MarkReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
}

// PresenceResponse lists the users currently connected to the room.
type PresenceResponse struct {
	RoomID string   `json:"roomId"`
	Name   string   `json:"name"`
	Online []string `json:"online"`
	Count  int64    `json:"count"`
}
