package protocol

import "github.com/yeremiapane/cafe-venue/models"

const (
	TypeSeatsUpdated   = "seats.updated"
	TypeMenuUpdated    = "menu.updated"
	TypeBalanceUpdated = "balance.updated"
	TypeOrdersUpdated  = "orders.updated"
)

type SeatUser struct {
	ID   *uint   `json:"id"`
	Name *string `json:"name"`
}

type SeatView struct {
	ID       string   `json:"id"`
	Occupied bool     `json:"occupied"`
	Time     *int64   `json:"time"`
	User     SeatUser `json:"user"`
}

// SeatMap is the full seat state keyed by seat id.
type SeatMap map[string]SeatView

// HolderOf returns the id of the seat held by userID.
func (m SeatMap) HolderOf(userID uint) (string, bool) {
	for id, seat := range m {
		if seat.User.ID != nil && *seat.User.ID == userID {
			return id, true
		}
	}
	return "", false
}

type OrderView struct {
	ID          uint   `json:"id"`
	ItemKey     string `json:"itemKey"`
	Price       int64  `json:"price"`
	Status      string `json:"status"`
	Capacity    int    `json:"capacity"`
	DeliveredAt int64  `json:"deliveredAt"`
}

type SeatsUpdated struct {
	Type  string  `json:"type"`
	Seats SeatMap `json:"seats"`
}

type MenuUpdated struct {
	Type      string      `json:"type"`
	MenuItems models.Menu `json:"menuItems"`
}

// BalanceUpdated has the same shape whether broadcast or sent to one client.
type BalanceUpdated struct {
	Type    string `json:"type"`
	UserID  uint   `json:"userId"`
	Balance int64  `json:"balance"`
}

type OrdersUpdated struct {
	Type   string      `json:"type"`
	Orders []OrderView `json:"orders"`
}

func NewSeatsUpdated(seats SeatMap) SeatsUpdated {
	return SeatsUpdated{Type: TypeSeatsUpdated, Seats: seats}
}

func NewMenuUpdated(menu models.Menu) MenuUpdated {
	return MenuUpdated{Type: TypeMenuUpdated, MenuItems: menu}
}

func NewBalanceUpdated(userID uint, balance int64) BalanceUpdated {
	return BalanceUpdated{Type: TypeBalanceUpdated, UserID: userID, Balance: balance}
}

func NewOrdersUpdated(orders []models.Order) OrdersUpdated {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, OrderView{
			ID:          o.ID,
			ItemKey:     o.ItemKey,
			Price:       o.Price,
			Status:      o.Status,
			Capacity:    o.Capacity,
			DeliveredAt: o.DeliveredAt,
		})
	}
	return OrdersUpdated{Type: TypeOrdersUpdated, Orders: views}
}
