package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fortuna-game/fortuna-backend/internal/hub"
	"github.com/fortuna-game/fortuna-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h))
	r.Get("/rooms/{code}/qr", RoomQR(h))
	r.Get("/ws", ws.Handler(h, log))
	r.Get("/healthz", Healthz)

	return r
}
