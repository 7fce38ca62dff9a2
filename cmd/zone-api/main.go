// Command zone-api serves point-to-zone lookups over a dissolved pipeline
// output: exact containment first, nearest zone as fallback.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"postzone/logger"
	"postzone/lookup"
	"postzone/metrics"
	"postzone/postal"
	"postzone/store"
)

// Server holds the zone index and optional cache for handling requests
type Server struct {
	index *lookup.Index
	cache *lookup.Cache
}

// RuntimeMetrics holds memory and goroutine statistics
type RuntimeMetrics struct {
	Goroutines   int     `json:"goroutines"`
	AllocMB      float64 `json:"alloc_mb"`       // currently allocated heap
	TotalAllocMB float64 `json:"total_alloc_mb"` // cumulative allocated (includes freed)
	SysMB        float64 `json:"sys_mb"`         // total memory from OS
	HeapAllocMB  float64 `json:"heap_alloc_mb"`
	HeapSysMB    float64 `json:"heap_sys_mb"`
	HeapObjects  uint64  `json:"heap_objects"`
	NumGC        uint32  `json:"num_gc"`
}

// getRuntimeMetrics collects current runtime statistics
func getRuntimeMetrics() RuntimeMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeMetrics{
		Goroutines:   runtime.NumGoroutine(),
		AllocMB:      float64(m.Alloc) / 1024 / 1024,
		TotalAllocMB: float64(m.TotalAlloc) / 1024 / 1024,
		SysMB:        float64(m.Sys) / 1024 / 1024,
		HeapAllocMB:  float64(m.HeapAlloc) / 1024 / 1024,
		HeapSysMB:    float64(m.HeapSys) / 1024 / 1024,
		HeapObjects:  m.HeapObjects,
		NumGC:        m.NumGC,
	}
}

// startMetricsLogger starts a background goroutine that logs runtime
// statistics periodically
func startMetricsLogger(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			m := getRuntimeMetrics()
			logger.L().Info("runtime metrics",
				"goroutines", m.Goroutines, "alloc_mb", m.AllocMB,
				"sys_mb", m.SysMB, "heap_objects", m.HeapObjects, "gc_cycles", m.NumGC)
		}
	}()
}

type zoneResponse struct {
	Code       string  `json:"code"`
	Method     string  `json:"method"`
	DistanceKm float64 `json:"distance_km"`
}

// parsePoint reads the lon and lat query parameters and checks their range
func parsePoint(r *http.Request) (orb.Point, error) {
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		return orb.Point{}, errors.New("lon must be a number")
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return orb.Point{}, errors.New("lat must be a number")
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return orb.Point{}, errors.New("coordinates out of range")
	}
	return orb.Point{lon, lat}, nil
}

// handleZone resolves ?lon=&lat= to a postal code
func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	metrics.LookupsTotal.Inc()
	defer func() {
		metrics.LookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	p, err := parsePoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := lookup.Key(p)
	if cached, ok := s.cache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	z, km, ok := s.index.Nearest(p)
	if !ok {
		metrics.LookupMissesTotal.Inc()
		http.Error(w, "no zone matches this location", http.StatusNotFound)
		return
	}
	resp := zoneResponse{Code: z.Code, Method: "nearest", DistanceKm: km}
	if km == 0 {
		resp.Method = "contains"
	}
	metrics.LookupHitsTotal.WithLabelValues(resp.Method).Inc()

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	s.cache.Put(r.Context(), key, string(body))
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// handleZones lists the indexed postal codes
func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"count": s.index.Len(),
		"codes": s.index.Codes(),
	}); err != nil {
		logger.L().Error("encode zones response", "error", err)
	}
}

func main() {
	_ = godotenv.Load()
	logger.Setup()

	zonesPath := flag.String("zones", envOr("ZONES_PATH", "zones-dissolved.geojson"), "dissolved zones GeoJSON file")
	pgTable := flag.String("pg-table", envOr("PG_TABLE", ""), "read zones from this Postgres table (PG_* env builds the DSN)")
	addr := flag.String("addr", envOr("LISTEN_ADDR", ":8080"), "listen address")
	flag.Parse()

	// Load zones at startup
	features, err := loadZones(*zonesPath, *pgTable)
	if err != nil {
		logger.L().Error("load zones", "error", err)
		os.Exit(1)
	}

	index := lookup.NewIndex(features)
	logger.L().Info("zone index built", "zones", index.Len())

	server := &Server{index: index, cache: lookup.OpenCacheFromEnv()}

	// Register routes
	http.HandleFunc("/api/zone", server.handleZone)
	http.HandleFunc("/api/zones", server.handleZones)

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus scrape endpoint
	http.Handle("/metrics", metrics.Handler())

	// Raw runtime statistics
	http.HandleFunc("/debug/runtime", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(getRuntimeMetrics())
	})

	// Start background metrics logging (every 30 seconds)
	startMetricsLogger(30 * time.Second)

	logger.L().Info("listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.L().Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadZones(path, table string) ([]*geojson.Feature, error) {
	if table != "" {
		db, err := store.Open(store.BuildDSNFromEnv())
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return store.ReadFeatures(context.Background(), db, table)
	}
	return postal.ReadFeatures(path)
}
