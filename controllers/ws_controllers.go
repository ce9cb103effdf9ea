package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/cafe-venue/hub"
	"github.com/yeremiapane/cafe-venue/services"
	"github.com/yeremiapane/cafe-venue/utils"
)

const (
	maxFrameSize = 64 * 1024
	sendBuffer   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the page is served from another port
	},
}

type SocketController struct {
	loop       *services.Loop
	dispatcher *Dispatcher
	limit      rate.Limit
	burst      int
}

func NewSocketController(loop *services.Loop, dispatcher *Dispatcher, perSecond float64, burst int) *SocketController {
	return &SocketController{
		loop:       loop,
		dispatcher: dispatcher,
		limit:      rate.Limit(perSecond),
		burst:      burst,
	}
}

// ServeSocket -> websocket endpoint. Frames are read here and executed on the loop.
func (sc *SocketController) ServeSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := hub.NewClient(conn, sendBuffer)
	peer := &Peer{Socket: client}
	log := utils.InfoLogger.WithFields(logrus.Fields{
		"socket": client.ID(),
		"remote": c.ClientIP(),
	})
	log.Debug("Socket opened")

	go client.WriteLoop()
	sc.readLoop(client, peer, log)

	sc.loop.Submit("socket.close", func(ctx context.Context) {
		sc.dispatcher.Close(ctx, peer)
	})
	client.Close()
}

func (sc *SocketController) readLoop(client *hub.Client, peer *Peer, log *logrus.Entry) {
	limiter := rate.NewLimiter(sc.limit, sc.burst)
	client.PrepareRead(maxFrameSize)

	for {
		kind, frame, err := client.Conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("Socket read error: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !limiter.Allow() {
			log.Warn("Inbound rate exceeded, frame dropped")
			continue
		}
		if !sc.loop.Submit("socket.frame", func(ctx context.Context) {
			sc.dispatcher.HandleFrame(ctx, peer, frame)
		}) {
			return
		}
	}
}
