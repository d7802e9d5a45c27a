// Package api exposes the most recent scan's results over HTTP. It is a
// read-only view: nothing under this package can trigger a scan or change
// scan state, following spec.md §1's separation between the core engine
// and everything downstream of it.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Socket mirrors pkg/scan.Socket without importing it, keeping this
// package's wire format independent of internal scan types.
type Socket struct {
	IP   string `json:"ip"`
	Port uint16 `json:"port"`
}

// ScanReport is the snapshot a Store serves.
type ScanReport struct {
	Timestamp time.Time `json:"timestamp"`
	Open      []Socket  `json:"open"`
	Errors    []string  `json:"errors,omitempty"`
}

// Store holds the most recently completed scan's report. Store is safe
// for concurrent use: one goroutine publishes while any number of HTTP
// handlers read.
type Store struct {
	mu     sync.RWMutex
	report *ScanReport
}

func NewStore() *Store {
	return &Store{}
}

// Publish replaces the stored report. Grounded on the teacher's
// api/api.go GetAssets, which re-read a file written by a separate scan
// process; here the scan and the API share memory instead.
func (s *Store) Publish(r ScanReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &r
}

func (s *Store) Current() (ScanReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return ScanReport{}, false
	}
	return *s.report, true
}

// resultsResponse matches the teacher's GetAssetsResponse envelope shape.
type resultsResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      *ScanReport `json:"data,omitempty"`
	OpenCount int         `json:"open_count"`
}

func handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "farscan-api",
		"endpoints": []string{
			"GET /api/v1/results - most recent scan's results",
			"GET /health - health check",
		},
	})
}

func handleResults(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, ok := store.Current()
		if !ok {
			c.JSON(http.StatusOK, resultsResponse{
				Success:   true,
				Message:   "no scan has completed yet",
				OpenCount: 0,
			})
			return
		}
		c.JSON(http.StatusOK, resultsResponse{
			Success:   true,
			Data:      &report,
			OpenCount: len(report.Open),
		})
	}
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "farscan-api"})
}
