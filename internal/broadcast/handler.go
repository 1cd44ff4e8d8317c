package broadcast

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/creaselive/crease/internal/platform/id"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Score feeds are public reads; origin checks add nothing here.
		return true
	},
}

// ServeWS upgrades the connection and attaches the client to the hub. The
// context must outlive the request; it bounds the connection's pumps. An
// optional ?match_id= query sets the initial subscription.
func ServeWS(ctx context.Context, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("broadcast: upgrade: %v", err)
			return
		}

		client := NewClient(id.New(), conn, hub)
		if matchID := r.URL.Query().Get("match_id"); matchID != "" {
			client.Subscribe([]string{matchID})
		}
		hub.Register(client)

		go client.WritePump(ctx)
		go client.ReadPump(ctx)
	}
}
