package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	resultsDB "github.com/quizparty-games/quizparty/internal/database/results/database"
	"github.com/quizparty-games/quizparty/internal/logging"
	"github.com/quizparty-games/quizparty/internal/quiz"
	"github.com/quizparty-games/quizparty/internal/quiz/room"
)

type createRoomRequest struct {
	HostID       string                  `json:"hostId"`
	HostName     string                  `json:"hostName"`
	Rounds       []room.RoundDefinition  `json:"rounds"`
	TiebreakBank []room.TiebreakQuestion `json:"tiebreakBank,omitempty"`
	PrizePlaces  int                     `json:"prizePlaces,omitempty"`
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

// HandleCreateRoom is the host's entry point: it configures a room and
// returns its id for players to join over the websocket channel.
func (h *Handler) HandleCreateRoom(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx).Named("ws.HandleCreateRoom")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed body", http.StatusBadRequest)
			return
		}

		roomID, err := h.manager.CreateRoom(req.HostID, req.HostName, quiz.RoomOptions{
			Rounds:       req.Rounds,
			TiebreakBank: req.TiebreakBank,
			PrizePlaces:  req.PrizePlaces,
		})
		if err != nil {
			logger.Errorf("create room: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(createRoomResponse{RoomID: roomID})
	})
}

// HandleResults serves the archived results of a completed room.
func (h *Handler) HandleResults(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx).Named("ws.HandleResults")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["roomId"]

		results, err := h.manager.Results(roomID)
		if err != nil {
			if errors.Is(err, resultsDB.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			logger.Errorf("fetch results: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	})
}
