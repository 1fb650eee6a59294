package handlers

import (
	"log"
	"net/http"
	"time"

	"speechtrack/internal/live"
	"speechtrack/internal/models"
	"speechtrack/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients carry the session cookie; origin checks belong to the
	// reverse proxy in this deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler pushes live snapshots over websockets. One connection carries
// one subscription; the client opens a socket per watched collection and
// closes it to cancel.
type LiveHandler struct {
	liveService *service.LiveService
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(liveService *service.LiveService) *LiveHandler {
	return &LiveHandler{liveService: liveService}
}

// snapshotFrame is one websocket message: the full current snapshot of the
// watched collection.
type snapshotFrame struct {
	Collection string      `json:"collection"`
	Snapshot   interface{} `json:"snapshot"`
}

// Watch handles GET /api/live/{collection} for the signed-in patient's own
// streams.
func (h *LiveHandler) Watch(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	collection := r.PathValue("collection")

	switch collection {
	case live.CollectionHistory, live.CollectionFeedback, live.CollectionExercises:
	default:
		respondWithError(w, http.StatusNotFound, "Unknown collection", "", nil)
		return
	}

	h.serve(w, r, collection, identity)
}

// WatchPatient handles GET /api/doctor/live/patients/{id}/{collection}:
// a doctor watching any patient's streams.
func (h *LiveHandler) WatchPatient(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	collection := r.PathValue("collection")

	switch collection {
	case live.CollectionHistory, live.CollectionFeedback, live.CollectionExercises:
	default:
		respondWithError(w, http.StatusNotFound, "Unknown collection", "", nil)
		return
	}

	h.serve(w, r, collection, patientID)
}

// WatchDirectory handles GET /api/doctor/live/patients: the live patient
// overview.
func (h *LiveHandler) WatchDirectory(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	frames := make(chan snapshotFrame, 8)
	cancel := h.liveService.WatchDirectory(r.Context(), func(snapshot []service.PatientSummary) {
		pushFrame(frames, snapshotFrame{Collection: "patients", Snapshot: snapshot})
	})

	h.pump(conn, frames, cancel)
}

func (h *LiveHandler) serve(w http.ResponseWriter, r *http.Request, collection, identity string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	frames := make(chan snapshotFrame, 8)
	push := func(snapshot interface{}) {
		pushFrame(frames, snapshotFrame{Collection: collection, Snapshot: snapshot})
	}

	var cancel live.CancelFunc
	switch collection {
	case live.CollectionHistory:
		cancel = h.liveService.WatchHistory(r.Context(), identity, func(s []models.PronunciationRecord) { push(toRecordViews(s)) })
	case live.CollectionFeedback:
		cancel = h.liveService.WatchFeedback(r.Context(), identity, func(s []models.FeedbackMessage) { push(toFeedbackViews(s)) })
	case live.CollectionExercises:
		cancel = h.liveService.WatchExercises(r.Context(), identity, func(s []models.AssignedExercise) { push(toExerciseViews(s)) })
	}

	h.pump(conn, frames, cancel)
}

// pushFrame hands a snapshot to the write pump without ever blocking the
// watch callback. A slow consumer drops intermediate snapshots; the next
// frame is always the full current state, so nothing is lost for good.
func pushFrame(frames chan snapshotFrame, frame snapshotFrame) {
	for {
		select {
		case frames <- frame:
			return
		default:
			select {
			case <-frames:
			default:
			}
		}
	}
}

// pump runs the connection's read and write loops. The read loop exists to
// observe the close; either loop ending cancels the subscription and tears
// the connection down.
func (h *LiveHandler) pump(conn *websocket.Conn, frames chan snapshotFrame, cancel live.CancelFunc) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case frame := <-frames:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
