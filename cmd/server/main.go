package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/admission"
	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/auth"
	"github.com/shrimpsizemoose/lussekatt/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	if service.Config.Seed.UsersFile != "" {
		if err := app.SeedUsers(service.Store, service.Config.Seed.UsersFile); err != nil {
			logger.Error.Fatalf("Failed to seed users: %v", err)
		}
	}

	verifier := auth.NewVerifier(service.Store)

	// a nil *events.Publisher must not end up as a non-nil interface
	var publisher admission.Publisher
	if service.Events != nil {
		publisher = service.Events
	}
	controller := admission.NewController(service.Store, publisher, nil)

	healthHandler := handlers.NewHealthHandler(service.Store)
	assignmentHandler := handlers.NewAssignmentHandler(service, verifier)
	submissionHandler := handlers.NewSubmissionHandler(controller, verifier)

	http.HandleFunc("GET /healthz", handlers.Instrument(healthHandler.HandleHealthz))
	http.HandleFunc("GET /v1/assignments", handlers.Instrument(assignmentHandler.HandleList))
	http.HandleFunc("POST /v1/assignments", handlers.Instrument(assignmentHandler.HandleCreate))
	http.HandleFunc("GET /v1/assignments/{id}", handlers.Instrument(assignmentHandler.HandleGet))
	http.HandleFunc("PUT /v1/assignments/{id}", handlers.Instrument(assignmentHandler.HandleUpdate))
	http.HandleFunc("DELETE /v1/assignments/{id}", handlers.Instrument(assignmentHandler.HandleDelete))
	http.HandleFunc("POST /v1/assignments/{id}/submission", handlers.Instrument(submissionHandler.HandleSubmit))

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting lussekatt server on %s", service.Config.Server.Port)
	if service.Events == nil {
		logger.Info.Println("Event publishing disabled: no redis_url configured")
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Lussekatt server failed: %v", err)
	}
}
