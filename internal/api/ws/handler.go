package ws

import (
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/feature/findinpage"
	"github.com/GriffinCanCode/browserkit/internal/feature/tabs"
	"github.com/GriffinCanCode/browserkit/internal/feature/toolbar"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: localOrigin,
}

// localOrigin accepts same-host and loopback origins.
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	return parsed.Host == r.Host || host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// Handler manages WebSocket connections.
type Handler struct {
	store      *browserstate.Store
	interactor *findinpage.Interactor
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// NewHandler creates a new WebSocket handler. A nil interactor disables
// find messages.
func NewHandler(store *browserstate.Store, interactor *findinpage.Interactor, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	return &Handler{
		store:      store,
		interactor: interactor,
		metrics:    metrics,
		logger:     logging.OrNop(logger).Named("ws"),
	}
}

// HandleConnection upgrades the request and streams until the client
// disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	cl := newClient()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, cl)
	}()

	cl.push(Frame{Type: "system", Message: "connected", Timestamp: time.Now().Unix()})

	bar := toolbar.NewPresenter(cl, h.store, "")
	normal := tabs.NewCounterPresenter(counter{cl, "tab_count"}, h.store, false)
	private := tabs.NewCounterPresenter(counter{cl, "private_tab_count"}, h.store, true)
	find := findinpage.NewPresenter(h.store, cl)

	bar.Start()
	normal.Start()
	private.Start()
	find.Start()

	h.readLoop(conn, cl, find)

	find.Stop()
	private.Stop()
	normal.Stop()
	bar.Stop()
	cl.close()
	<-writerDone
}

func (h *Handler) readLoop(conn *websocket.Conn, cl *client, find *findinpage.Presenter) {
	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			cl.push(errorFrame("invalid message"))
			continue
		}
		h.handle(cl, find, msg)
	}
}

func (h *Handler) handle(cl *client, find *findinpage.Presenter, msg Message) {
	switch msg.Type {
	case "ping":
		cl.push(newFrame("pong", nil))

	case "click":
		if !cl.click(msg.ExtensionID) {
			cl.push(errorFrame("no browser action for " + msg.ExtensionID))
		}

	case "find":
		if h.interactor == nil {
			cl.push(errorFrame("find in page is not available"))
			return
		}
		find.Bind(msg.TabID)
		if err := h.interactor.Find(msg.TabID, msg.Text); err != nil {
			cl.push(errorFrame(err.Error()))
		}

	case "find_next", "find_clear":
		tabID := find.BoundTab()
		if h.interactor == nil || tabID == "" {
			cl.push(errorFrame("no active search"))
			return
		}
		var err error
		if msg.Type == "find_next" {
			err = h.interactor.Next(tabID, msg.Forward)
		} else {
			err = h.interactor.Clear(tabID)
			find.Unbind()
		}
		if err != nil {
			cl.push(errorFrame(err.Error()))
		}

	default:
		cl.push(errorFrame("unknown message type"))
	}
}

// writeLoop is the only writer of conn.
func (h *Handler) writeLoop(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case frame := <-cl.send:
			data, err := sonic.Marshal(frame)
			if err != nil {
				h.logger.Error("Failed to encode frame", zap.String("type", frame.Type), zap.Error(err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				// Unblock the reader so the connection is torn down
				_ = conn.Close()
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
