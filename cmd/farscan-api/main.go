// Command farscan-api serves the read-only results API over HTTP,
// adapted from the teacher's cmd/server/main.go.
package main

import (
	"log"

	"github.com/javadmehdiyev/farscan/pkg/api"
)

func main() {
	store := api.NewStore()
	router := api.NewRouter(store)

	log.Println("starting farscan-api on :8080")
	log.Println("  GET /api/v1/results - most recent scan's results")
	log.Println("  GET /health - health check")

	if err := router.Run(":8080"); err != nil {
		log.Fatal("failed to start server:", err)
	}
}
