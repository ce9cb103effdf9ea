// Package protocol defines the JSON frames exchanged with venue clients.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TypeClientConnect = "client.connect"
	TypeSeatsChoose   = "seats.choose"
	TypeSeatsLeave    = "seats.leave"
	TypeMenuOrder     = "menu.order"
	TypeItemsDrink    = "items.drink"
)

// Inbound is one of Connect, ChooseSeat, LeaveSeat, OrderItem, DrinkItem or Unknown.
type Inbound interface {
	inbound()
	Type() string
}

type Connect struct {
	ClientID string `json:"clientId"`
}

type ChooseSeat struct {
	SeatID   string `json:"seatId"`
	Username string `json:"username"`
}

type LeaveSeat struct{}

type OrderItem struct {
	ItemKey string `json:"itemKey"`
}

type DrinkItem struct {
	OrderID uint `json:"orderId"`
}

// Unknown carries a frame whose type is not part of the protocol.
type Unknown struct {
	Name string
}

func (Connect) inbound()    {}
func (ChooseSeat) inbound() {}
func (LeaveSeat) inbound()  {}
func (OrderItem) inbound()  {}
func (DrinkItem) inbound()  {}
func (Unknown) inbound()    {}

func (Connect) Type() string    { return TypeClientConnect }
func (ChooseSeat) Type() string { return TypeSeatsChoose }
func (LeaveSeat) Type() string  { return TypeSeatsLeave }
func (OrderItem) Type() string  { return TypeMenuOrder }
func (DrinkItem) Type() string  { return TypeItemsDrink }
func (u Unknown) Type() string  { return u.Name }

var ErrMissingType = errors.New("frame has no type")

// Decode parses one text frame. Unrecognised types decode to Unknown without error;
// unparsable JSON or a payload of the wrong shape is an error.
func Decode(frame []byte) (Inbound, error) {
	var envelope struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if envelope.Type == nil {
		return nil, ErrMissingType
	}

	var (
		msg Inbound
		err error
	)
	switch *envelope.Type {
	case TypeClientConnect:
		var m Connect
		err = json.Unmarshal(frame, &m)
		msg = m
	case TypeSeatsChoose:
		var m ChooseSeat
		err = json.Unmarshal(frame, &m)
		msg = m
	case TypeSeatsLeave:
		msg = LeaveSeat{}
	case TypeMenuOrder:
		var m OrderItem
		err = json.Unmarshal(frame, &m)
		msg = m
	case TypeItemsDrink:
		var m DrinkItem
		err = json.Unmarshal(frame, &m)
		msg = m
	default:
		msg = Unknown{Name: *envelope.Type}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", *envelope.Type, err)
	}
	return msg, nil
}
