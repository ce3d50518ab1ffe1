package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"spendly/backend/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades an authenticated request to a WebSocket
// connection and registers it with the hub. The auth middleware runs
// before this, so the user id is already on the context.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserIDFromContext(r)
		if userID == "" {
			http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Error upgrading websocket connection: %v", err)
			return
		}

		client := &Client{UserID: userID, Conn: conn}
		hub.register <- client

		client.send(Notification{Type: "connected", Message: "WebSocket connection established"})

		// Drain the connection until the client goes away.
		go func() {
			defer func() {
				hub.unregister <- client
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
