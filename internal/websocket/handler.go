package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// Handler upgrades the request and streams changes until the client leaves.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // local network, any origin
		})
		if err != nil {
			h.logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		newClient(h, conn).run(r.Context())
	}
}
