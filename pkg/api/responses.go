package api

import (
	"time"

	"sitemap-console/pkg/console"
	"sitemap-console/pkg/storage"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
	TLS     bool   `json:"tls"`
}

// LivenessResponse represents the liveness probe response
type LivenessResponse struct {
	Status string `json:"status"` // "alive"
}

// ReadinessResponse represents the readiness probe response
type ReadinessResponse struct {
	Status string            `json:"status"` // "ready" or "not_ready"
	Checks map[string]string `json:"checks"` // Component health status
}

// SystemResponse reports process and host resource usage
type SystemResponse struct {
	CPUPercent   float64  `json:"cpu_percent"`
	MemUsed      uint64   `json:"mem_used_bytes"`
	MemTotal     uint64   `json:"mem_total_bytes"`
	MemPercent   float64  `json:"mem_percent"`
	DiskFree     uint64   `json:"disk_free_bytes"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	Goroutines   int      `json:"goroutines"`
}

// SitesResponse lists the sites of the loaded document
type SitesResponse struct {
	Current string             `json:"current"`
	Sites   []console.SiteInfo `json:"sites"`
}

// PageSummary is one entry of the page list
type PageSummary struct {
	Page       console.Page `json:"page"`
	Customized bool         `json:"customized"`
	Current    bool         `json:"current"`
}

// PagesResponse lists the console pages
type PagesResponse struct {
	Site  string        `json:"site"`
	Pages []PageSummary `json:"pages"`
}

// ActionResponse is returned by every console mutation
type ActionResponse struct {
	State    *console.PageState `json:"state,omitempty"`
	Alerts   []string           `json:"alerts,omitempty"`
	Prompts  []string           `json:"prompts,omitempty"`
	Revision *RevisionResponse  `json:"revision,omitempty"`
}

// RevisionResponse summarizes one stored revision
type RevisionResponse struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"` // ISO 8601 format
	Site      string `json:"site"`
	Page      string `json:"page"`
	Author    string `json:"author,omitempty"`
	Checksum  string `json:"checksum"`
	Size      int    `json:"size"`
}

// RevisionsResponse represents paginated revision results
type RevisionsResponse struct {
	Revisions []RevisionResponse `json:"revisions"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string             `json:"error"`
	Code    int                `json:"code"`
	Message string             `json:"message,omitempty"`
	State   *console.PageState `json:"state,omitempty"`
	Alerts  []string           `json:"alerts,omitempty"`
	Prompts []string           `json:"prompts,omitempty"`
}

// convertRevision converts storage.Revision to RevisionResponse
func convertRevision(r *storage.Revision) RevisionResponse {
	return RevisionResponse{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		Site:      r.Site,
		Page:      r.Page,
		Author:    r.Author,
		Checksum:  r.Checksum,
		Size:      r.Size,
	}
}
