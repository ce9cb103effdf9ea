package models

import "fmt"

type Seat struct {
	ID       string `gorm:"primaryKey;type:varchar(8)" json:"id"`
	Occupied bool   `gorm:"not null;default:false" json:"occupied"`
	Time     *int64 `json:"time"` // unix millis of occupation, nil when free
	UserID   *uint  `gorm:"index" json:"userId"`
}

// SeatRoster -> A1..A{cols}, B1.. for the given number of rows
func SeatRoster(rows, cols int) []string {
	ids := make([]string, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 1; c <= cols; c++ {
			ids = append(ids, fmt.Sprintf("%c%d", 'A'+rune(r), c))
		}
	}
	return ids
}
