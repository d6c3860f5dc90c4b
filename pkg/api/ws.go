package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/presence"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/stream"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// origin policy is enforced by the security middleware before the
	// upgrade is reached
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleSubscribe upgrades to a websocket and streams full room snapshots:
// the complete ordered message set on connect and again after every append.
// The connection also owns the member's heartbeat, so presence tracks
// socket lifetime.
func (a *API) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	room := mux.Vars(r)["room"]
	if !checkRoom(w, uid, room) {
		return
	}

	snapshots, dispose, err := stream.Subscribe(room)
	if err != nil {
		writeErr(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		dispose()
		logger.Warn("ws_upgrade_failed", "room", room, "uid", uid, "error", err)
		return
	}

	telemetry.SessionsActive.Inc()
	hb := presence.Start(r.Context(), uid, a.HeartbeatInterval)
	logger.Info("ws_subscribed", "room", room, "uid", uid)

	defer func() {
		hb.Stop()
		dispose()
		telemetry.SessionsActive.Dec()
		conn.Close()
		logger.Info("ws_closed", "room", room, "uid", uid)
	}()

	// the reader only detects the peer going away; inbound frames carry no
	// protocol
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				logger.Debug("ws_write_failed", "room", room, "uid", uid, "error", err)
				return
			}
		}
	}
}
