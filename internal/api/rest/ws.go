package rest

import (
	"net/http"
	"time"

	notesService "notes-manager/internal/service/notes"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// wsWriteTimeout таймаут записи одного сообщения в WebSocket
	wsWriteTimeout = 10 * time.Second
	// wsPingInterval периодичность ping для обнаружения мертвых соединений
	wsPingInterval = 30 * time.Second
)

// EventsHandler отдает события изменения заметок через WebSocket
type EventsHandler struct {
	events   *notesService.EventService
	upgrader websocket.Upgrader
}

// NewEventsHandler создает новый WebSocket хэндлер событий
func NewEventsHandler(events *notesService.EventService) *EventsHandler {
	return &EventsHandler{
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS для WebSocket обрабатывается на уровне внешнего middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve обрабатывает GET /notes/events: upgrade до WebSocket и стриминг событий
func (h *EventsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := h.events.Subscribe()
	defer h.events.Unsubscribe(ch)

	// Читаем входящие сообщения только ради обнаружения закрытия соединения
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.Debug().Err(err).Msg("websocket write failed, closing subscriber")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
