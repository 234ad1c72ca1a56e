package network

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/protocol"

	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const keepAliveInterval = 25 * time.Second

// Http serves the read-only lobby API, its change streams and the
// websocket entry to the same state machine as the tcp server.
type Http struct {
	addr    string
	session Session
}

func NewHttpServer(addr string, session Session) Http {
	return Http{addr: addr, session: session}
}

func (h Http) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/rooms", h.rooms)
		r.Get("/rooms/{code}", h.room)
	})
	r.Get("/rooms/{code}/stream", h.roomStream)
	r.Get("/lobby/stream", h.lobbyStream)
	r.Get("/ws", h.serveWs)
	return r
}

func (h Http) Serve() error {
	server := &http.Server{
		Addr:              h.addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Infof("Http server listening on %s\n", h.addr)
	return server.ListenAndServe()
}

func (h Http) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error(err)
		return
	}
	if err = h.session.handle(protocol.NewWebsocketReadWriteCloser(conn)); err != nil {
		log.Error(err)
	}
}

func (h Http) lobby(r *http.Request) ([]model.RoomSummary, error) {
	rooms, err := h.session.Service.Rooms(r.Context())
	if err != nil {
		return nil, err
	}
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, snap := range rooms {
		summaries = append(summaries, model.Summary(snap.Room, snap.Players))
	}
	return summaries, nil
}

func (h Http) rooms(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.lobby(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// view is the room as a spectator sees it. Hole cards stay hidden until the
// game is over.
func (h Http) view(r *http.Request, roomID string) (model.Room, error) {
	snap, err := h.session.Service.Snapshot(r.Context(), roomID)
	if err != nil {
		return model.Room{}, err
	}
	return model.View(snap.Room, snap.Players, ""), nil
}

func (h Http) room(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.Service.RoomByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.View(snap.Room, snap.Players, ""))
}

func (h Http) roomStream(w http.ResponseWriter, r *http.Request) {
	svc := h.session.Service
	snap, err := svc.RoomByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	roomID := snap.Room.ID
	sub := svc.Subscribe(roomID)
	defer svc.Unsubscribe(sub)

	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	writeSSE(w, "room", model.View(snap.Room, snap.Players, ""))
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open || event.Kind == database.RoomDeleted {
				writeSSE(w, "deleted", map[string]string{"deleted": roomID})
				flusher.Flush()
				return
			}
			view, err := h.view(r, roomID)
			if err == consts.ErrorsRoomInvalid {
				writeSSE(w, "deleted", map[string]string{"deleted": roomID})
				flusher.Flush()
				return
			}
			if err != nil {
				log.Errorf("room %s stream: %v\n", roomID, err)
				return
			}
			writeSSE(w, "room", view)
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func (h Http) lobbyStream(w http.ResponseWriter, r *http.Request) {
	sub := h.session.Service.SubscribeLobby()
	defer h.session.Service.Unsubscribe(sub)

	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	send := func() bool {
		summaries, err := h.lobby(r)
		if err != nil {
			return false
		}
		writeSSE(w, "rooms", summaries)
		flusher.Flush()
		return true
	}
	if !send() {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-sub:
			if !open || !send() {
				return
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return flusher, true
}

func writeSSE(w http.ResponseWriter, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error(err)
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(string(data), "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if err == consts.ErrorsRoomInvalid {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(err.Error())})
}
