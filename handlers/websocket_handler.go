package handlers

import (
	"log/slog"
	"net/http"

	"github.com/courtside/league-system/fixtures"
	"github.com/courtside/league-system/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is deployed.
		return true
	},
}

type WebSocketHandler struct {
	hub           *fixtures.Hub
	leagueService services.LeagueService
	logger        *slog.Logger
}

func NewWebSocketHandler(hub *fixtures.Hub, ls services.LeagueService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		leagueService: ls,
		logger:        logger,
	}
}

// ServeWs subscribes the caller to live events of one league. Clients
// connect to /ws/leagues/{leagueID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	leagueIDStr := chi.URLParam(r, "leagueID")
	if leagueIDStr == "" {
		http.Error(w, "Missing leagueID", http.StatusBadRequest)
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		http.Error(w, "Invalid leagueID", http.StatusBadRequest)
		return
	}

	if _, err := h.leagueService.GetByID(r.Context(), leagueID); err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.String("league_id", leagueIDStr),
			slog.Any("error", err))
		return
	}

	roomID := "league_" + leagueIDStr

	client := &fixtures.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client registered", slog.String("room", roomID))
}
