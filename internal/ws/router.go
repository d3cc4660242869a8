package ws

import (
	"context"
	"encoding/json"
	"time"

	"linkup-service/internal/models"
)

const handlerTimeout = 10 * time.Second

// route dispatches one inbound frame. Handlers that hit the database
// run on their own goroutine so a slow write never stalls the loop;
// presence and room bookkeeping stay on the loop itself.
func (h *Hub) route(in *inboundEvent) {
	c, evt := in.client, in.event
	switch evt.Type {
	case EventAddUser:
		h.handleIdentify(c, evt.Payload)
	case EventJoinChats:
		h.handleJoinChats(c, evt.Payload)
	case EventUserOnline:
		h.handleOnlineRelay(c, evt.Payload)
	case EventTyping:
		h.relayTyping(c, EventTyping, evt.Payload)
	case EventStopTyping:
		h.relayTyping(c, EventStopTyping, evt.Payload)
	case EventSendMessage:
		go h.handleSendMessage(c, evt.Payload)
	case EventChatOpened:
		go h.handleChatOpened(c, evt.Payload)
	case EventMessageSeen:
		go h.handleMessageSeen(c, evt.Payload)
	default:
		h.log.Warn("unknown event dropped", "type", evt.Type, "connId", c.id)
	}
}

func (h *Hub) handleIdentify(c *Client, raw json.RawMessage) {
	var p IdentifyPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.UserID == "" {
		h.log.Warn("bad identify payload", "connId", c.id, "error", err)
		return
	}
	c.userID = p.UserID
	h.presence.Identify(c.id, p.UserID)
	h.log.Info("user identified", "connId", c.id, "userId", p.UserID)
}

// handleJoinChats subscribes the connection to its chat rooms and runs
// the online handshake both ways: the caller learns which room peers
// are already online, and those peers learn the caller came online.
// The per-connection acknowledged set keeps users sharing several
// rooms from being announced more than once.
func (h *Hub) handleJoinChats(c *Client, raw json.RawMessage) {
	var p JoinChatsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.log.Warn("bad joinAllChats payload", "connId", c.id, "error", err)
		return
	}
	for _, chatID := range p.ChatIDs {
		if chatID == "" {
			continue
		}
		h.joinRoom(chatID, c)
	}
	if c.userID == "" {
		return
	}
	for _, chatID := range p.ChatIDs {
		for _, peer := range h.roomPeers(chatID, c) {
			if peer.userID == "" || peer.userID == c.userID {
				continue
			}
			if _, seen := peer.ackedOnline[c.userID]; !seen {
				peer.ackedOnline[c.userID] = struct{}{}
				peer.sendEvent(EventUserOnline, PresencePayload{UserID: c.userID})
			}
			if _, seen := c.ackedOnline[peer.userID]; !seen {
				c.ackedOnline[peer.userID] = struct{}{}
				c.sendEvent(EventUserOnline, PresencePayload{UserID: peer.userID})
			}
		}
	}
}

// handleOnlineRelay answers a peer's online announcement: the caller
// asks the router to tell the peer that the caller is online too.
func (h *Hub) handleOnlineRelay(c *Client, raw json.RawMessage) {
	var p OnlineRelayPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.UserID == "" {
		h.log.Warn("bad userOnline payload", "connId", c.id, "error", err)
		return
	}
	h.SendToUser(p.UserID, EventUserOnline, PresencePayload{UserID: p.CurrentUserID})
}

func (h *Hub) relayTyping(c *Client, t EventType, raw json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.ChatID == "" {
		h.log.Warn("bad typing payload", "connId", c.id, "error", err)
		return
	}
	h.broadcastToRoom(p.ChatID, c, t, p)
}

// handleSendMessage runs the delivery protocol: persist, fan out to
// the room, then push-notify members with no live connection.
func (h *Hub) handleSendMessage(c *Client, raw json.RawMessage) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.ChatID == "" || req.Sender == "" {
		h.log.Warn("bad sendMessage payload", "connId", c.id, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	msg, err := h.svc.SaveMessage(ctx, &req)
	if err != nil {
		h.log.Error("persist message", "chatId", req.ChatID, "error", err)
		return
	}

	// The whole room hears the message, sender included. The sender's
	// client renders its own message from this echo, not locally.
	h.BroadcastToRoom(req.ChatID, EventReceiveMessage, msg)

	members, err := h.svc.ChatMemberIDs(ctx, req.ChatID)
	if err != nil {
		h.log.Error("load chat members", "chatId", req.ChatID, "error", err)
		return
	}
	offline := make([]string, 0, len(members))
	for _, id := range members {
		if id == req.Sender || h.presence.IsOnline(id) {
			continue
		}
		offline = append(offline, id)
	}
	if len(offline) > 0 {
		h.svc.PushToOffline(ctx, offline, &req)
	}
}

// handleChatOpened marks every unread message in the chat as read by
// the opener. Peers only hear about it when something actually
// changed, so reopening an already-read chat stays silent.
func (h *Hub) handleChatOpened(c *Client, raw json.RawMessage) {
	var p ChatOpenedPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.ChatID == "" || p.UserID == "" {
		h.log.Warn("bad chatOpened payload", "connId", c.id, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	modified, err := h.svc.MarkChatRead(ctx, p.ChatID, p.UserID)
	if err != nil {
		h.log.Error("mark chat read", "chatId", p.ChatID, "error", err)
		return
	}
	if modified > 0 {
		h.BroadcastToRoom(p.ChatID, EventMessagesUpdated, MessagesUpdatedPayload{
			ChatID: p.ChatID,
			UserID: p.UserID,
		})
	}
}

// handleMessageSeen records a single read receipt. A receipt for the
// reader's own message, or for an unknown message, is dropped without
// a broadcast.
func (h *Hub) handleMessageSeen(c *Client, raw json.RawMessage) {
	var p MessageSeenPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.MessageID == "" || p.UserID == "" {
		h.log.Warn("bad messageSeen payload", "connId", c.id, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	msg, err := h.svc.MarkSeen(ctx, p.MessageID, p.UserID)
	if err != nil {
		h.log.Error("mark message seen", "messageId", p.MessageID, "error", err)
		return
	}
	if msg == nil {
		return
	}

	readBy := make([]string, 0, len(msg.ReadBy))
	for _, id := range msg.ReadBy {
		readBy = append(readBy, id.Hex())
	}
	h.BroadcastToRoom(msg.ChatID.Hex(), EventMessageRead, MessageReadPayload{
		MessageID: p.MessageID,
		ReadBy:    readBy,
	})
}
