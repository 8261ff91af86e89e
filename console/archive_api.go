package console

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	gfn "github.com/panyam/goutils/fn"

	"github.com/panyam/sigplot/core"
)

// ArchiveAPI provides REST endpoints over the sample archive
type ArchiveAPI struct {
	archive *SampleArchive
}

// NewArchiveAPI creates a new archive API handler
func NewArchiveAPI(archive *SampleArchive) *ArchiveAPI {
	return &ArchiveAPI{
		archive: archive,
	}
}

// RegisterRoutes registers all archive-related routes
func (a *ArchiveAPI) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/archive/summary", a.GetSummary).Methods("GET")
	router.HandleFunc("/api/archive/query", a.QuerySamples).Methods("GET")
	router.HandleFunc("/api/archive/buckets", a.QueryBuckets).Methods("GET")
}

// ArchiveQueryResponse represents archived samples for one signal
type ArchiveQueryResponse struct {
	Signal  string       `json:"signal"`
	SinceMs int64        `json:"sinceMs"`
	Samples [][2]float64 `json:"samples"`
}

// ArchiveBucketsResponse represents bucketed aggregations for one signal
type ArchiveBucketsResponse struct {
	Signal   string         `json:"signal"`
	SinceMs  int64          `json:"sinceMs"`
	BucketMs int64          `json:"bucketMs"`
	Buckets  []SampleBucket `json:"buckets"`
}

// GetSummary returns archive-wide statistics
func (a *ArchiveAPI) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.archive.Summary()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// QuerySamples returns raw archived samples for one signal
func (a *ArchiveAPI) QuerySamples(w http.ResponseWriter, r *http.Request) {
	signal := r.URL.Query().Get("signal")
	if signal == "" {
		http.Error(w, "signal parameter is required", http.StatusBadRequest)
		return
	}
	sinceMs := queryInt64(r, "sinceMs", 0)

	samples, err := a.archive.Query(signal, sinceMs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := ArchiveQueryResponse{
		Signal:  signal,
		SinceMs: sinceMs,
		Samples: gfn.Map(samples, func(s core.Sample) [2]float64 {
			return [2]float64{float64(s.TimestampMs), s.Value}
		}),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// QueryBuckets returns bucketed aggregations for one signal
func (a *ArchiveAPI) QueryBuckets(w http.ResponseWriter, r *http.Request) {
	signal := r.URL.Query().Get("signal")
	if signal == "" {
		http.Error(w, "signal parameter is required", http.StatusBadRequest)
		return
	}
	sinceMs := queryInt64(r, "sinceMs", 0)
	bucketMs := queryInt64(r, "bucketMs", 1000)
	if bucketMs <= 0 {
		http.Error(w, "bucketMs must be positive", http.StatusBadRequest)
		return
	}

	buckets, err := a.archive.QueryBuckets(signal, sinceMs, bucketMs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := ArchiveBucketsResponse{
		Signal:   signal,
		SinceMs:  sinceMs,
		BucketMs: bucketMs,
		Buckets:  buckets,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// queryInt64 parses an integer query parameter with a default
func queryInt64(r *http.Request, name string, def int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
