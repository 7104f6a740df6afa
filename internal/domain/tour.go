package domain

import (
	"errors"
	"time"
)

var ErrTourNotFound = errors.New("tour not found")

// Stored summary of a past planning run.
type TourHeader struct {
	TourID          string
	CreatedAt       time.Time
	Strategy        string
	TotalClients    int
	TotalDistanceKm float64
}
