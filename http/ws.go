package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 4096
)

// RegisterWebSocketHandlers 注册问候流：客户端每发送一个文本帧（名字），返回一条问候
func RegisterWebSocketHandlers(mux *http.ServeMux, allowedOrigins []string, logger *zap.Logger) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originMatch(allowedOrigins, origin) != matchNone
		},
	}

	mux.HandleFunc("GET /ws/hello", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade已写入错误响应
			logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()
		conn.SetReadLimit(wsMaxMessageSize)

		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warn("websocket read failed", zap.Error(err))
				}
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(MessageResponse{Message: HelloMessage(string(payload))}); err != nil {
				logger.Warn("websocket write failed", zap.Error(err))
				return
			}
		}
	})
}
