package service

import "linkup-service/internal/ws"

// Notifier delivers real-time events to connected clients. Satisfied
// by *ws.Hub; tests swap in a recording fake.
type Notifier interface {
	SendToUser(userID string, t ws.EventType, payload any) bool
	BroadcastToRoom(roomID string, t ws.EventType, payload any)
	IsOnline(userID string) bool
}
