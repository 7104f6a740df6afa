package dto

import "time"

type PlanRequest struct {
	DepotAddress string           `json:"depot_address"`
	Depot        *CoordinatesBody `json:"depot"`
	MaxPerGroup  int              `json:"max_per_group"`
	MinPerGroup  *int             `json:"min_per_group"`
	Strategy     string           `json:"strategy"`
}

type VisitResponse struct {
	Order      int            `json:"order"`
	DistanceKm float64        `json:"distance_km"`
	Target     TargetResponse `json:"target"`
}

type DayResponse struct {
	Week       int             `json:"week"`
	Day        string          `json:"day"`
	DistanceKm float64         `json:"distance_km"`
	Visits     []VisitResponse `json:"visits"`
}

type SummaryResponse struct {
	TotalClients    int     `json:"total_clients"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	Days            int     `json:"days"`
	Weeks           int     `json:"weeks"`
}

type PlanResponse struct {
	ID          string           `json:"id"`
	Strategy    string           `json:"strategy"`
	Depot       CoordinatesBody  `json:"depot"`
	MaxPerGroup int              `json:"max_per_group"`
	MinPerGroup int              `json:"min_per_group"`
	Summary     SummaryResponse  `json:"summary"`
	Days        []DayResponse    `json:"days"`
	Warnings    []string         `json:"warnings"`
	Unresolved  []TargetResponse `json:"unresolved"`
}

type TourResponse struct {
	TourID          string    `json:"tour_id"`
	CreatedAt       time.Time `json:"created_at"`
	Strategy        string    `json:"strategy"`
	TotalClients    int       `json:"total_clients"`
	TotalDistanceKm float64   `json:"total_distance_km"`
}

type ListToursResponse struct {
	Tours []TourResponse `json:"tours"`
}
