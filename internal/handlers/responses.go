package handlers

import "github.com/abrezinsky/swishfeed/internal/models"

// ShotsResponse is the body of GET /shots, oldest shot first
type ShotsResponse struct {
	Shots []models.Shot `json:"shots"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Clients  int    `json:"clients"`
}
