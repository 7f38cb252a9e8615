// Вебсокетная рассылка версий документов. Каждый подписчик получает номер
// версии после каждой успешной мутации и перечитывает содержимое по HTTP.
//
// Основные возможности:
//   - Поддержка множественных активных вебсокетных сессий на документ.
//   - Пинг для поддержания активных соединений.
//   - Автоматическая очистка закрытых сессий.
package editor

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gofrs/uuid"
)

const (
	pingPeriod = time.Second * 20
	wsTimeout  = time.Minute
)

// VersionMsg - сообщение подписчику о новой версии документа.
type VersionMsg struct {
	DocumentID string    `json:"document_id"`
	Version    uint64    `json:"version"`
	At         time.Time `json:"at"`
}

type WebsocketVersionService struct {
	sessions map[string]map[uuid.UUID]*websocket.Conn
	mutex    sync.RWMutex
}

func NewWebsocketVersionService() *WebsocketVersionService {
	return &WebsocketVersionService{
		sessions: make(map[string]map[uuid.UUID]*websocket.Conn),
	}
}

func (wvs *WebsocketVersionService) Handle(documentID string, w http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Open websocket connection", "err", err)
		return
	}
	defer c.CloseNow()

	conID := uuid.Must(uuid.NewV4())

	wvs.mutex.Lock()
	cons, ok := wvs.sessions[documentID]
	if !ok {
		cons = make(map[uuid.UUID]*websocket.Conn)
	}
	cons[conID] = c
	wvs.sessions[documentID] = cons
	wvs.mutex.Unlock()

	go wvs.pingLoop(documentID, conID, c)

	// Start read until close
	ctx := context.Background()
	ctx = c.CloseRead(ctx)
	<-ctx.Done()

	wvs.mutex.Lock()
	delete(wvs.sessions[documentID], conID)
	if len(wvs.sessions[documentID]) == 0 {
		delete(wvs.sessions, documentID)
	}
	wvs.mutex.Unlock()

	c.Close(websocket.StatusNormalClosure, "")
}

// Broadcast рассылает номер версии всем подписчикам документа.
func (wvs *WebsocketVersionService) Broadcast(documentID string, version uint64) {
	wvs.mutex.RLock()
	cons := make([]*websocket.Conn, 0, len(wvs.sessions[documentID]))
	for _, con := range wvs.sessions[documentID] {
		cons = append(cons, con)
	}
	wvs.mutex.RUnlock()

	msg := VersionMsg{DocumentID: documentID, Version: version, At: time.Now().UTC()}
	for _, con := range cons {
		ctx, cancel := context.WithTimeout(context.Background(), wsTimeout)
		if err := wsjson.Write(ctx, con, msg); err != nil {
			slog.Debug("Websocket write failed", "documentId", documentID, "err", err)
		}
		cancel()
	}
}

// CloseDocumentSessions закрывает все подписки документа (документ закрыт).
func (wvs *WebsocketVersionService) CloseDocumentSessions(documentID string) {
	wvs.mutex.Lock()
	defer wvs.mutex.Unlock()
	cons, ok := wvs.sessions[documentID]
	if !ok {
		return
	}
	for _, con := range cons {
		con.Close(websocket.StatusNormalClosure, "document closed")
	}
}

func (wvs *WebsocketVersionService) pingLoop(documentID string, conID uuid.UUID, c *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		wvs.mutex.RLock()
		_, alive := wvs.sessions[documentID][conID]
		wvs.mutex.RUnlock()
		if !alive {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), wsTimeout)
		err := c.Ping(ctx)
		cancel()
		if err != nil {
			c.Close(websocket.StatusGoingAway, "ping timeout")
			return
		}
	}
}
