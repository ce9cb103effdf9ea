package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/cafe-venue/controllers"
	"github.com/yeremiapane/cafe-venue/hub"
	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/protocol"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/services"
	"github.com/yeremiapane/cafe-venue/testutil"
)

type setup struct {
	store      *repository.GormStore
	registry   *hub.Registry
	venue      *services.Venue
	loop       *services.Loop
	dispatcher *controllers.Dispatcher
}

func newSetup(t *testing.T) *setup {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewGormStore(testutil.OpenTestDB(t))
	require.NoError(t, store.SeedSeats(context.Background(), models.SeatRoster(2, 2)))

	registry := hub.NewRegistry()
	venue := services.NewVenue(services.Options{Store: store, Registry: registry})

	ctx, cancel := context.WithCancel(context.Background())
	loop := services.NewLoop(64)
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return &setup{
		store:      store,
		registry:   registry,
		venue:      venue,
		loop:       loop,
		dispatcher: controllers.NewDispatcher(venue),
	}
}

func frame(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleFrameConnectBindsPeer(t *testing.T) {
	s := newSetup(t)
	socket := testutil.NewSocket("s1")
	peer := &controllers.Peer{Socket: socket}

	s.dispatcher.HandleFrame(context.Background(), peer, frame(t, map[string]string{"type": "client.connect", "clientId": "c1"}))

	assert.Equal(t, "c1", peer.ClientID)
	assert.Equal(t, []string{protocol.TypeSeatsUpdated, protocol.TypeMenuUpdated}, socket.Types())
	_, ok := s.registry.Lookup("c1")
	assert.True(t, ok)
}

func TestHandleFrameRoutesSeatAndOrderMessages(t *testing.T) {
	ctx := context.Background()
	s := newSetup(t)
	socket := testutil.NewSocket("s1")
	peer := &controllers.Peer{Socket: socket}

	s.dispatcher.HandleFrame(ctx, peer, frame(t, map[string]string{"type": "client.connect", "clientId": "c1"}))
	s.dispatcher.HandleFrame(ctx, peer, frame(t, map[string]string{"type": "seats.choose", "seatId": "B1", "username": "alice"}))
	s.dispatcher.HandleFrame(ctx, peer, frame(t, map[string]string{"type": "menu.order", "itemKey": "WATER"}))

	seat, err := s.store.GetSeat(ctx, "B1")
	require.NoError(t, err)
	assert.True(t, seat.Occupied)

	orders, err := s.store.GetOrdersByClientID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	s.dispatcher.HandleFrame(ctx, peer, frame(t, map[string]interface{}{"type": "items.drink", "orderId": orders[0].ID}))
	got, err := s.store.GetOrderByID(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Capacity)

	s.dispatcher.HandleFrame(ctx, peer, frame(t, map[string]string{"type": "seats.leave"}))
	seat, err = s.store.GetSeat(ctx, "B1")
	require.NoError(t, err)
	assert.False(t, seat.Occupied)
}

func TestHandleFrameDropsBadInput(t *testing.T) {
	s := newSetup(t)
	socket := testutil.NewSocket("s1")
	peer := &controllers.Peer{Socket: socket, ClientID: "c1"}

	for _, raw := range []string{
		`not json`,
		`{}`,
		`{"type":"dance"}`,
		`{"type":"items.drink","orderId":"seven"}`,
	} {
		assert.NotPanics(t, func() {
			s.dispatcher.HandleFrame(context.Background(), peer, []byte(raw))
		}, raw)
	}
	assert.Empty(t, socket.Types())
}

func TestDispatchUnknownTypeIsIgnored(t *testing.T) {
	s := newSetup(t)
	peer := &controllers.Peer{Socket: testutil.NewSocket("s1")}

	res, err := s.dispatcher.Dispatch(context.Background(), peer, protocol.Unknown{Name: "dance"})
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestConnectUnderNewIDReleasesOldBinding(t *testing.T) {
	ctx := context.Background()
	s := newSetup(t)
	peer := &controllers.Peer{Socket: testutil.NewSocket("s1")}

	_, err := s.dispatcher.Dispatch(ctx, peer, protocol.Connect{ClientID: "c1"})
	require.NoError(t, err)
	_, err = s.dispatcher.Dispatch(ctx, peer, protocol.Connect{ClientID: "c2"})
	require.NoError(t, err)

	_, ok := s.registry.Lookup("c1")
	assert.False(t, ok)
	_, ok = s.registry.Lookup("c2")
	assert.True(t, ok)
}

func TestCloseRunsDisconnectCascade(t *testing.T) {
	ctx := context.Background()
	s := newSetup(t)
	peer := &controllers.Peer{Socket: testutil.NewSocket("s1")}

	_, err := s.dispatcher.Dispatch(ctx, peer, protocol.Connect{ClientID: "c1"})
	require.NoError(t, err)
	res, err := s.dispatcher.Dispatch(ctx, peer, protocol.ChooseSeat{SeatID: "A1", Username: "alice"})
	require.NoError(t, err)
	require.True(t, res.OK(), res.String())

	s.dispatcher.Close(ctx, peer)

	seat, err := s.store.GetSeat(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, seat.Occupied)
	assert.Zero(t, s.registry.Count())
}

func TestVenueControllerViews(t *testing.T) {
	s := newSetup(t)
	vc := controllers.NewVenueController(s.loop, s.venue)

	r := gin.New()
	r.GET("/api/seats", vc.GetSeats)
	r.GET("/api/menu", vc.GetMenu)
	r.GET("/healthz", vc.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/seats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var seats struct {
		Status bool             `json:"status"`
		Data   protocol.SeatMap `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seats))
	assert.True(t, seats.Status)
	assert.Len(t, seats.Data, 4)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/menu", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var menu struct {
		Data models.Menu `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &menu))
	assert.Equal(t, int64(80), menu.Data["BLACK_TEA"].Price)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected":0`)
}

func TestPageControllerSubstitutesSocketURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<script>new WebSocket("<WSS_URL_PLACEHOLDER>")</script>`), 0o644))

	pc, err := controllers.NewPageController(path, "wss://cafe.example/ws")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", pc.ServeIndex)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `<script>new WebSocket("wss://cafe.example/ws")</script>`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	_, err = controllers.NewPageController(filepath.Join(t.TempDir(), "missing.html"), "")
	assert.Error(t, err)
}

func TestEvictedSocketCannotActForClient(t *testing.T) {
	ctx := context.Background()
	s := newSetup(t)
	oldPeer := &controllers.Peer{Socket: testutil.NewSocket("old")}

	_, err := s.dispatcher.Dispatch(ctx, oldPeer, protocol.Connect{ClientID: "c1"})
	require.NoError(t, err)
	res, err := s.dispatcher.Dispatch(ctx, oldPeer, protocol.ChooseSeat{SeatID: "A1", Username: "alice"})
	require.NoError(t, err)
	require.True(t, res.OK(), res.String())
	res, err = s.dispatcher.Dispatch(ctx, oldPeer, protocol.OrderItem{ItemKey: "WATER"})
	require.NoError(t, err)
	require.True(t, res.OK(), res.String())

	newPeer := &controllers.Peer{Socket: testutil.NewSocket("new")}
	_, err = s.dispatcher.Dispatch(ctx, newPeer, protocol.Connect{ClientID: "c1"})
	require.NoError(t, err)

	orders, err := s.store.GetOrdersByClientID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	for _, msg := range []protocol.Inbound{
		protocol.LeaveSeat{},
		protocol.ChooseSeat{SeatID: "B2", Username: "mallory"},
		protocol.OrderItem{ItemKey: "WATER"},
		protocol.DrinkItem{OrderID: orders[0].ID},
	} {
		res, err := s.dispatcher.Dispatch(ctx, oldPeer, msg)
		require.NoError(t, err)
		assert.Equal(t, services.ReasonStaleSocket, res.Reason, msg.Type())
	}

	seat, err := s.store.GetSeat(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, seat.Occupied)
	orders, err = s.store.GetOrdersByClientID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 5, orders[0].Capacity)

	// the current socket still acts normally
	res, err = s.dispatcher.Dispatch(ctx, newPeer, protocol.LeaveSeat{})
	require.NoError(t, err)
	assert.True(t, res.OK(), res.String())
}

func TestUnboundPeerCannotDrink(t *testing.T) {
	ctx := context.Background()
	s := newSetup(t)
	owner := &controllers.Peer{Socket: testutil.NewSocket("owner")}
	_, err := s.dispatcher.Dispatch(ctx, owner, protocol.Connect{ClientID: "c1"})
	require.NoError(t, err)
	_, err = s.dispatcher.Dispatch(ctx, owner, protocol.ChooseSeat{SeatID: "A1", Username: "alice"})
	require.NoError(t, err)
	_, err = s.dispatcher.Dispatch(ctx, owner, protocol.OrderItem{ItemKey: "WATER"})
	require.NoError(t, err)
	orders, err := s.store.GetOrdersByClientID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	stranger := &controllers.Peer{Socket: testutil.NewSocket("stranger")}
	res, err := s.dispatcher.Dispatch(ctx, stranger, protocol.DrinkItem{OrderID: orders[0].ID})
	require.NoError(t, err)
	assert.Equal(t, services.ReasonUnbound, res.Reason)

	got, err := s.store.GetOrderByID(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Capacity)
	assert.Empty(t, stranger.Socket.(*testutil.Socket).Types())
}
