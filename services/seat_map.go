package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/cafe-venue/cache"
	"github.com/yeremiapane/cafe-venue/protocol"
	"github.com/yeremiapane/cafe-venue/repository"
)

// SeatMapLoader builds the outbound seat map from the store, resolving each
// occupant's username by id.
func SeatMapLoader(store repository.Store) cache.Loader {
	return func(ctx context.Context) (protocol.SeatMap, error) {
		seats, err := store.ListSeats(ctx)
		if err != nil {
			return nil, err
		}

		names := map[uint]string{}
		out := make(protocol.SeatMap, len(seats))
		for _, seat := range seats {
			view := protocol.SeatView{ID: seat.ID, Occupied: seat.Occupied, Time: seat.Time}
			if seat.UserID != nil {
				uid := *seat.UserID
				name, ok := names[uid]
				if !ok {
					user, err := store.GetUserByID(ctx, uid)
					switch {
					case errors.Is(err, repository.ErrNotFound):
					case err != nil:
						return nil, fmt.Errorf("seat %s occupant: %w", seat.ID, err)
					default:
						name = user.Username
						names[uid] = name
					}
				}
				view.User.ID = &uid
				if name != "" {
					view.User.Name = &name
				}
			}
			out[seat.ID] = view
		}
		return out, nil
	}
}
