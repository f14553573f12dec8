package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 16
)

// Session is a live realtime connection binding an agent to a call
type Session struct {
	MeetingID string
	AgentID   string

	conn      *websocket.Conn
	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger
}

// NewSession takes ownership of conn and starts its read and write pumps.
func NewSession(meetingID, agentID string, conn *websocket.Conn, log zerolog.Logger) *Session {
	s := &Session{
		MeetingID: meetingID,
		AgentID:   agentID,
		conn:      conn,
		send:      make(chan Message, sendBuffer),
		done:      make(chan struct{}),
		log:       log.With().Str("meeting_id", meetingID).Str("agent_id", agentID).Logger(),
	}

	go s.readPump()
	go s.writePump()
	return s
}

// UpdateInstructions queues a session.update carrying the agent's instructions.
func (s *Session) UpdateInstructions(instructions string) error {
	return s.Send(sessionUpdate(instructions))
}

func (s *Session) Send(msg Message) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- msg:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrMessageBufferFull
	}
}

// Done is closed once the session has been closed for any reason.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		s.conn.Close()
	})
}

func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("agent session closed unexpectedly")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn().Err(err).Msg("unparseable agent session message")
			continue
		}

		switch msg.Type {
		case MessageTypeError:
			if msg.Error != nil {
				s.log.Error().Str("code", msg.Error.Code).Str("error_message", msg.Error.Message).Msg("agent session error")
			}
		case MessageTypeSessionUpdated:
			s.log.Debug().Msg("agent session updated")
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.log.Error().Err(err).Str("type", msg.Type).Msg("failed to write agent session message")
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}
