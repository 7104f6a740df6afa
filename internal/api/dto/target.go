package dto

type CoordinatesBody struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type TargetResponse struct {
	TargetID   string           `json:"target_id"`
	Name       string           `json:"name"`
	Street     string           `json:"street"`
	PostalCode string           `json:"postal_code"`
	City       string           `json:"city"`
	Coords     *CoordinatesBody `json:"coords"`
}

type ListTargetsResponse struct {
	Targets []TargetResponse `json:"targets"`
}
