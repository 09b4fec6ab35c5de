package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// Stream events.
const (
	EventStats = "stats"
	EventError = "error"
)

// StreamMessage is one frame pushed to dashboard clients.
type StreamMessage struct {
	Event string              `json:"event"`
	Data  *models.SystemStats `json:"data,omitempty"`
	Error string              `json:"error,omitempty"`
}

type systemStatsReader interface {
	SystemStats(ctx context.Context) (*models.SystemStats, error)
}

type streamGauge interface {
	StreamClientConnected(delta int)
}

// buildUpgrader accepts any origin when allowedOrigins is empty.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// StatsStreamHandler pushes system statistics to admin dashboards.
type StatsStreamHandler struct {
	stats    systemStatsReader
	gauge    streamGauge
	interval time.Duration
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewStatsStreamHandler constructs the handler. gauge may be nil.
func NewStatsStreamHandler(stats systemStatsReader, gauge streamGauge, interval time.Duration, allowedOrigins []string, logger *zap.Logger) *StatsStreamHandler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsStreamHandler{
		stats:    stats,
		gauge:    gauge,
		interval: interval,
		upgrader: buildUpgrader(allowedOrigins),
		logger:   logger.With(zap.String("component", "stats_stream")),
	}
}

// Stream godoc
// @Summary Live system statistics
// @Description Upgrades to a websocket and pushes a stats frame immediately and then on every interval
// @Tags Admin
// @Security BearerAuth
// @Param access_token query string false "Token for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols"
// @Router /admin/stats/stream [get]
func (h *StatsStreamHandler) Stream(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.gauge != nil {
		h.gauge.StreamClientConnected(1)
		defer h.gauge.StreamClientConnected(-1)
	}

	log := h.logger.With(zap.String("user_id", claims.UserID))
	log.Info("stats client connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go h.readPump(conn, cancel, log)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	pinger := time.NewTicker(streamPingPeriod)
	defer pinger.Stop()

	if err := h.push(ctx, conn); err != nil {
		log.Debug("stats push failed", zap.Error(err))
		return
	}
	for {
		select {
		case <-ctx.Done():
			log.Info("stats client disconnected")
			return
		case <-ticker.C:
			if err := h.push(ctx, conn); err != nil {
				log.Debug("stats push failed", zap.Error(err))
				return
			}
		case <-pinger.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed and
// cancels the stream once the peer goes away.
func (h *StatsStreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc, log *zap.Logger) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", zap.Error(err))
			}
			return
		}
	}
}

// push writes one frame. A failed read is reported to the client but keeps
// the stream open; only write errors end it.
func (h *StatsStreamHandler) push(ctx context.Context, conn *websocket.Conn) error {
	msg := StreamMessage{Event: EventStats}
	stats, err := h.stats.SystemStats(ctx)
	if err != nil {
		msg = StreamMessage{Event: EventError, Error: appErrors.FromError(err).Message}
	} else {
		msg.Data = stats
	}
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}
