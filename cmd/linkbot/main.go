package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"linkbot/internal/app"
	"linkbot/internal/config"
	"linkbot/internal/logger"
	"linkbot/internal/metrics"
)

func main() {
	// Check if we should start HTTP server for monitoring
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	mode := "post"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	switch mode {
	case "post", "generate", "prepare", "selftest":
	default:
		log.Printf("Usage: %s [post|generate|prepare|selftest]", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	outcome := app.Run(cfg, mode)
	log.Printf("Run finished: %s", outcome)

	if outcome == app.OutcomeFailed {
		os.Exit(1)
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":       status,
		"last_run":     stats["last_run_time"],
		"last_outcome": stats["last_outcome"],
		"last_error":   stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
