// Package live streams feed and thread states over WebSockets. One
// aggregator runs per connection, owned by the connection's goroutines and
// torn down when the socket closes.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"Vented/internal/api/handlers/comment"
	"Vented/internal/api/handlers/vent"
	"Vented/internal/api/metrics"
	"Vented/internal/api/middleware"
	coreFeed "Vented/internal/core/feed"
	"Vented/internal/core/sessions"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// Handler serves the live WebSocket endpoints
type Handler struct {
	feeds    *coreFeed.Factory
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new live stream handler
func NewHandler(feeds *coreFeed.Factory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		feeds: feeds,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same-origin policy is enforced by the cookie middleware;
			// the stream itself is public data.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// filterMessage is what clients send to adjust the feed.
type filterMessage struct {
	Action string `json:"action"` // setMood | setTag | clear
	Value  string `json:"value"`
}

// feedFrame is one pushed feed state.
type feedFrame struct {
	Error string        `json:"error,omitempty"`
	Posts []interface{} `json:"posts"`
}

// HandleFeed streams filtered feed states
// GET /feed/live
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	metrics.LiveStreams.Inc()
	defer metrics.LiveStreams.Dec()

	sess := sessions.For(middleware.GetUserID(r))
	agg := h.feeds.NewAggregator(sess)
	if err := agg.Start(r.Context()); err != nil {
		h.logger.Error("failed to start feed aggregator", "error", err)
		return
	}
	defer agg.Stop()

	go h.readFilters(conn, agg)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case st, ok := <-agg.Updates():
			if !ok {
				return
			}
			frame := feedFrame{Posts: make([]interface{}, 0, len(st.Posts))}
			if st.Err != nil {
				frame.Error = "feed unavailable"
			}
			for _, p := range st.Posts {
				frame.Posts = append(frame.Posts, vent.ToResponse(p))
			}
			if err := h.writeFrame(conn, frame); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// readFilters consumes client filter messages until the socket dies.
func (h *Handler) readFilters(conn *websocket.Conn, agg *coreFeed.Aggregator) {
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			// Unblocks HandleFeed's write loop on its next send.
			conn.Close()
			return
		}
		var msg filterMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.logger.Warn("ignoring malformed filter message", "error", err)
			continue
		}
		switch msg.Action {
		case "setMood":
			agg.SetMoodFilter(msg.Value)
		case "setTag":
			agg.SetTagFilter(msg.Value)
		case "clear":
			agg.ClearFilters()
		}
	}
}

// threadFrame is one pushed comment-thread state.
type threadFrame struct {
	Error    string        `json:"error,omitempty"`
	Comments []interface{} `json:"comments"`
}

// HandleThread streams one vent's comment thread
// GET /vents/{id}/comments/live
func (h *Handler) HandleThread(w http.ResponseWriter, r *http.Request, postID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	metrics.LiveStreams.Inc()
	defer metrics.LiveStreams.Dec()

	sess := sessions.For(middleware.GetUserID(r))
	th := h.feeds.NewThread(sess, postID)
	if err := th.Start(r.Context()); err != nil {
		h.logger.Error("failed to start thread stream", "error", err, "post", postID)
		return
	}
	defer th.Stop()

	go h.drainReads(conn)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case st, ok := <-th.Updates():
			if !ok {
				return
			}
			frame := threadFrame{Comments: make([]interface{}, 0, len(st.Comments))}
			if st.Err != nil {
				frame.Error = "thread unavailable"
			}
			for _, c := range st.Comments {
				frame.Comments = append(frame.Comments, comment.ToResponse(c))
			}
			if err := h.writeFrame(conn, frame); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// drainReads keeps the read side alive for control frames on streams that
// take no client messages.
func (h *Handler) drainReads(conn *websocket.Conn) {
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			conn.Close()
			return
		}
	}
}

func (h *Handler) writeFrame(conn *websocket.Conn, frame interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
