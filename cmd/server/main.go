package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Cloud-payto/optical-sub005/config"
	httpDelivery "github.com/Cloud-payto/optical-sub005/internal/delivery/http"
	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"github.com/Cloud-payto/optical-sub005/internal/infrastructure/cache"
	"github.com/Cloud-payto/optical-sub005/internal/infrastructure/catalog"
	"github.com/Cloud-payto/optical-sub005/internal/infrastructure/pdftext"
	"github.com/Cloud-payto/optical-sub005/internal/usecase"
	"github.com/Cloud-payto/optical-sub005/internal/vendors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Order Extraction Pipeline v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	debug := cfg.Server.Environment == "development" || cfg.Pipeline.EnableDebugLogging

	registry := vendors.Default()
	log.Printf("Registered vendors: %v", registry.Vendors())

	if cfg.Catalog.APIKey != "" {
		log.Printf("Catalog API configured: %s", cfg.Catalog.BaseURL)
	} else {
		log.Printf("WARNING: catalog API key not configured - lookups will fail!")
	}

	// Each run gets its own caching wrapper; the REST client underneath
	// is shared so the rate limiter covers the whole process
	apiClient := catalog.NewClient(catalog.ClientConfig{
		APIKey:            cfg.Catalog.APIKey,
		BaseURL:           cfg.Catalog.BaseURL,
		RequestTimeout:    cfg.Catalog.RequestTimeout,
		MaxRetries:        cfg.Catalog.MaxRetries,
		RetryBackoff:      cfg.Catalog.RetryBackoff,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})
	apiClient.SetDebug(debug)

	factory := func() domain.CatalogClient {
		return catalog.NewCachedClient(apiClient, cache.NewMemory(), cfg.Cache.TTL)
	}

	orchestrator := usecase.NewOrchestrator(registry, factory, pdftext.NewDecoder(), usecase.PipelineConfig{
		BatchSize:           cfg.Pipeline.BatchSize,
		BatchPause:          cfg.Pipeline.BatchPause,
		ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
		LookupTimeout:       cfg.Pipeline.LookupTimeout,
		CacheTTL:            cfg.Cache.TTL,
		EnableDebugLogging:  debug,
	})

	log.Printf("Pipeline: batch=%d pause=%s threshold=%.0f%%",
		cfg.Pipeline.BatchSize, cfg.Pipeline.BatchPause, cfg.Pipeline.ConfidenceThreshold)

	handler := httpDelivery.NewHandler(orchestrator)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
