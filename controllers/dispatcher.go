package controllers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/hub"
	"github.com/yeremiapane/cafe-venue/protocol"
	"github.com/yeremiapane/cafe-venue/services"
	"github.com/yeremiapane/cafe-venue/utils"
)

// Peer is one socket and the client identifier it announced. Only the event
// loop reads or writes ClientID.
type Peer struct {
	Socket   hub.Socket
	ClientID string
}

// Dispatcher routes decoded frames to the venue managers.
type Dispatcher struct {
	venue *services.Venue
}

func NewDispatcher(venue *services.Venue) *Dispatcher {
	return &Dispatcher{venue: venue}
}

// HandleFrame -> decode one text frame and run it. Bad frames are logged and dropped.
func (d *Dispatcher) HandleFrame(ctx context.Context, peer *Peer, frame []byte) {
	msg, err := protocol.Decode(frame)
	if err != nil {
		utils.InfoLogger.WithFields(logrus.Fields{
			"client": peer.ClientID,
			"socket": peer.Socket.ID(),
		}).Warnf("Discarding malformed frame: %v", err)
		return
	}
	d.Dispatch(ctx, peer, msg)
}

// Dispatch runs msg for peer. client.connect establishes the binding every
// other message is checked against.
func (d *Dispatcher) Dispatch(ctx context.Context, peer *Peer, msg protocol.Inbound) (services.Result, error) {
	var (
		res services.Result
		err error
	)

	switch m := msg.(type) {
	case protocol.Connect:
		if peer.ClientID != "" && peer.ClientID != m.ClientID {
			d.venue.Sessions.Release(peer.ClientID, peer.Socket)
		}
		peer.ClientID = m.ClientID
		res, err = d.venue.Sessions.Connect(ctx, m.ClientID, peer.Socket)
	case protocol.Unknown:
		utils.InfoLogger.WithField("client", peer.ClientID).Warnf("Unknown message type: %s", m.Name)
		return res, nil
	default:
		// only the socket currently bound to the client may act for it
		if res = d.venue.Sessions.Authorize(peer.ClientID, peer.Socket); res.OK() {
			res, err = d.route(ctx, peer.ClientID, msg)
		}
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"client": peer.ClientID,
		"type":   msg.Type(),
	})
	if err != nil {
		utils.ErrorLogger.WithFields(log.Data).Errorf("Handler failed: %v", err)
	} else if !res.OK() {
		log.Debugf("Message %s", res)
	}
	return res, err
}

// route runs a message that acts on behalf of clientID.
func (d *Dispatcher) route(ctx context.Context, clientID string, msg protocol.Inbound) (services.Result, error) {
	switch m := msg.(type) {
	case protocol.ChooseSeat:
		return d.venue.Seats.ChooseSeat(ctx, clientID, m.SeatID, m.Username)
	case protocol.LeaveSeat:
		return d.venue.Seats.LeaveSeat(ctx, clientID)
	case protocol.OrderItem:
		return d.venue.Orders.PlaceOrder(ctx, clientID, m.ItemKey)
	case protocol.DrinkItem:
		return d.venue.Orders.DrinkItem(ctx, clientID, m.OrderID)
	}
	return services.Result{}, nil
}

// Close runs the disconnect cascade for peer.
func (d *Dispatcher) Close(ctx context.Context, peer *Peer) {
	res, err := d.venue.Sessions.Disconnect(ctx, peer.ClientID, peer.Socket)
	if err != nil {
		utils.ErrorLogger.WithField("client", peer.ClientID).Errorf("Disconnect failed: %v", err)
		return
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"client": peer.ClientID,
		"socket": peer.Socket.ID(),
	}).Debugf("Socket closed, %s", res)
}
