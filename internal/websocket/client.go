package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-service/internal/models"
	"chat-service/internal/services"
	apperrors "chat-service/pkg/errors"
	"chat-service/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client owns one websocket connection: the write pump, the read loop
// and the action router. Identity lives in the Session value returned by
// the gate and is passed explicitly to every handler; nothing is hung
// off the connection object.
type Client struct {
	id         string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	gate       *services.PresenceService
	dispatcher *services.MessageService
}

func NewClient(hub *Hub, conn *websocket.Conn, gate *services.PresenceService, dispatcher *services.MessageService) *Client {
	return &Client{
		id:         uuid.NewString(),
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		gate:       gate,
		dispatcher: dispatcher,
	}
}

// Serve runs the connection to completion. The token is gated before any
// action is accepted; a rejected connection gets the error as an event
// and is then force-closed, never left half-open.
func (c *Client) Serve(token string) {
	c.hub.Register(c.id, c.send)
	go c.writePump()

	ctx := context.Background()
	session, err := c.gate.Join(ctx, c.id, token)
	if err != nil {
		logger.Warn("Rejected connection %s: %v", c.id, err)
		c.hub.Send(c.id, exceptionEvent(err))
		c.hub.Unregister(c.id)
		return
	}

	defer func() {
		// presence cleanup must run however the read loop ended
		c.gate.Leave(ctx, session)
		c.hub.Unregister(c.id)
	}()

	c.readPump(session)
}

func (c *Client) readPump(session *models.Session) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			return
		}
		c.dispatch(session, message)
	}
}

// dispatch routes one inbound frame. Client errors and store failures
// alike come back as an exception event to this connection only; an
// in-session failure never closes the connection.
func (c *Client) dispatch(session *models.Session, raw []byte) {
	ctx := context.Background()

	var env models.ActionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.reply(exceptionEvent(apperrors.InvalidArg("malformed action frame")))
		return
	}

	switch env.Action {
	case models.ActionSendDirect:
		var p models.SendDirectPayload
		if !c.decode(env.Data, &p) {
			return
		}
		msg, err := c.dispatcher.SendDirect(ctx, session, p.ReceiverID, p.Content)
		if err != nil {
			c.reply(exceptionEvent(err))
			return
		}
		c.reply(models.Event{Event: models.EventDirectOK, Data: msg})

	case models.ActionSendRoom:
		var p models.SendRoomPayload
		if !c.decode(env.Data, &p) {
			return
		}
		// the sender is subscribed to the room channel, so the
		// room-successfully push already reaches it
		if _, err := c.dispatcher.SendRoom(ctx, session, p.Room, p.Content); err != nil {
			c.reply(exceptionEvent(err))
		}

	case models.ActionListMessage:
		var p models.ListMessagePayload
		if !c.decode(env.Data, &p) {
			return
		}
		page, err := c.dispatcher.History(ctx, session, p)
		if err != nil {
			c.reply(exceptionEvent(err))
			return
		}
		c.reply(models.Event{Event: models.EventListOK, Data: page})

	case models.ActionListMember:
		var p models.ListMemberPayload
		if !c.decode(env.Data, &p) {
			return
		}
		page, err := c.dispatcher.Members(ctx, session, p)
		if err != nil {
			c.reply(exceptionEvent(err))
			return
		}
		c.reply(models.Event{Event: models.EventMemberOK, Data: page})

	case models.ActionUpdateStatus:
		var p models.UpdateStatusPayload
		if !c.decode(env.Data, &p) {
			return
		}
		changed, err := c.dispatcher.MarkRead(ctx, session, p.Room)
		if err != nil {
			c.reply(exceptionEvent(err))
			return
		}
		c.reply(models.Event{Event: models.EventStatusOK, Data: changed})

	default:
		c.reply(exceptionEvent(apperrors.NotFound("unknown action")))
	}
}

func (c *Client) decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.reply(exceptionEvent(apperrors.InvalidArg("malformed action payload")))
		return false
	}
	return true
}

func (c *Client) reply(event models.Event) {
	c.hub.Send(c.id, event)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func exceptionEvent(err error) models.Event {
	return models.Event{
		Event: models.EventException,
		Data: models.ExceptionPayload{
			Code:    string(apperrors.CodeOf(err)),
			Message: err.Error(),
		},
	}
}
