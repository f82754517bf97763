package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/hub"
	"github.com/fortuna-game/fortuna-backend/internal/session"
)

type createRoomRequest struct {
	Name   string        `json:"name"`
	Avatar engine.Avatar `json:"avatar"`
}

type createRoomResponse struct {
	Code   string `json:"code"`
	HostID string `json:"hostId"`
}

// CreateRoom mints a room with the caller as host. The returned host id
// must be presented in the JOIN_REQUEST on the room's channel; the
// session recognizes it and rebinds instead of seating a second player.
func CreateRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}

		host := engine.NewPlayer(uuid.NewString(), req.Name, req.Avatar, true)

		reply := make(chan hub.Created, 1)
		h.Inbox() <- hub.CreateRoom{Host: host, Reply: reply}
		created := <-reply

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createRoomResponse{
			Code:   created.Code,
			HostID: host.ID,
		})
	}
}

// RoomQR renders a PNG QR code of the room's join URL so a phone can
// hop in without typing the code.
func RoomQR(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		if <-reply == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		url := scheme + "://" + r.Host + "/join/" + code

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
