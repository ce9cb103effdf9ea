package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/cafe-venue/protocol"
	"github.com/yeremiapane/cafe-venue/services"
	"github.com/yeremiapane/cafe-venue/utils"
)

// VenueController serves read-only HTTP views of venue state.
type VenueController struct {
	loop  *services.Loop
	venue *services.Venue
}

func NewVenueController(loop *services.Loop, venue *services.Venue) *VenueController {
	return &VenueController{loop: loop, venue: venue}
}

// GetSeats -> current seat map, read on the loop so it never sees a half-applied change
func (vc *VenueController) GetSeats(c *gin.Context) {
	var (
		seats   protocol.SeatMap
		loadErr error
	)
	err := vc.loop.Do(c.Request.Context(), "api.seats", func(ctx context.Context) {
		seats, loadErr = vc.venue.SeatMap(ctx)
	})
	if err = errors.Join(err, loadErr); err != nil {
		utils.RespondError(c, http.StatusServiceUnavailable, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Seats retrieved", seats)
}

func (vc *VenueController) GetMenu(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Menu retrieved", vc.venue.Menu())
}

// Health -> loop liveness and the number of bound clients
func (vc *VenueController) Health(c *gin.Context) {
	var connected int
	err := vc.loop.Do(c.Request.Context(), "api.health", func(context.Context) {
		connected = vc.venue.Connected()
	})
	if err != nil {
		utils.RespondError(c, http.StatusServiceUnavailable, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"connected": connected})
}
