package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/utils"
)

// AutoMigrate creates or updates the venue tables.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Seat{},
		&models.Order{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// SeedSeats inserts any roster seat that does not exist yet. Seats already in
// the table keep their occupancy.
func SeedSeats(ctx context.Context, store repository.Store, rows, cols int) error {
	roster := models.SeatRoster(rows, cols)
	if err := store.SeedSeats(ctx, roster); err != nil {
		return fmt.Errorf("seed seats: %w", err)
	}
	utils.InfoLogger.Printf("Seat roster ready (%d seats)", len(roster))
	return nil
}
