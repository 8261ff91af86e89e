package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	gfn "github.com/panyam/goutils/fn"

	"github.com/panyam/sigplot/core"
)

// PlotAPI provides REST endpoints for one plot session
type PlotAPI struct {
	session *Session
}

// NewPlotAPI creates a new plot API handler
func NewPlotAPI(session *Session) *PlotAPI {
	return &PlotAPI{
		session: session,
	}
}

// RegisterRoutes registers all plot-related routes
func (a *PlotAPI) RegisterRoutes(router *mux.Router) {
	// Session inspection endpoints
	router.HandleFunc("/api/signals", a.ListSignals).Methods("GET")
	router.HandleFunc("/api/config", a.GetConfig).Methods("GET")
	router.HandleFunc("/api/stats", a.GetStats).Methods("GET")

	// Data endpoints
	router.HandleFunc("/api/data", a.GetData).Methods("GET")
	router.HandleFunc("/api/data/replace", a.ReplaceData).Methods("POST")
	router.HandleFunc("/api/data/append", a.AppendData).Methods("POST")
	router.HandleFunc("/api/data/clear", a.ClearData).Methods("POST")
}

// SignalResponse represents one configured signal
type SignalResponse struct {
	Name   string         `json:"name"`
	Kind   string         `json:"kind"`
	Labels map[int]string `json:"labels,omitempty"`
}

// SignalsResponse represents the session's signal configuration
type SignalsResponse struct {
	SessionID string           `json:"sessionId"`
	WindowMs  int64            `json:"windowMs"`
	Signals   []SignalResponse `json:"signals"`
}

// DataBatchRequest represents a replace/append payload.  Each signal
// maps to [timestampMs, value] pairs.
type DataBatchRequest struct {
	Signals map[string][][2]float64 `json:"signals"`
}

// DataResponse represents buffered data keyed by signal name
type DataResponse struct {
	WindowMs int64                   `json:"windowMs"`
	Signals  map[string][][2]float64 `json:"signals"`
}

// MutationResponse reports what a session holds after a mutation
type MutationResponse struct {
	Status string       `json:"status"`
	Stats  SessionStats `json:"stats"`
}

// ListSignals returns the session's signal configuration
func (a *PlotAPI) ListSignals(w http.ResponseWriter, r *http.Request) {
	specs := a.session.Specs()
	resp := SignalsResponse{
		SessionID: a.session.ID,
		WindowMs:  a.session.WindowMs(),
		Signals: gfn.Map(specs, func(spec core.SignalSpec) SignalResponse {
			return SignalResponse{
				Name:   spec.Name,
				Kind:   spec.Kind.String(),
				Labels: spec.EnumLabels,
			}
		}),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetConfig returns a freshly built chart document
func (a *PlotAPI) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.session.Config()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// GetStats returns buffer occupancy for the session
func (a *PlotAPI) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a.session.Stats())
}

// GetData returns the buffered samples keyed by signal name
func (a *PlotAPI) GetData(w http.ResponseWriter, r *http.Request) {
	data := a.session.BufferedData()
	resp := DataResponse{
		WindowMs: a.session.WindowMs(),
		Signals:  make(map[string][][2]float64, len(data)),
	}
	for name, samples := range data {
		resp.Signals[name] = gfn.Map(samples, func(s core.Sample) [2]float64 {
			return [2]float64{float64(s.TimestampMs), s.Value}
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ReplaceData swaps in a full snapshot; signals absent from the
// payload are emptied
func (a *PlotAPI) ReplaceData(w http.ResponseWriter, r *http.Request) {
	a.applyMutation(w, r, a.session.Replace)
}

// AppendData merges new samples; signals absent from the payload are
// untouched
func (a *PlotAPI) AppendData(w http.ResponseWriter, r *http.Request) {
	a.applyMutation(w, r, a.session.Append)
}

// ClearData empties every buffer
func (a *PlotAPI) ClearData(w http.ResponseWriter, r *http.Request) {
	a.session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (a *PlotAPI) applyMutation(w http.ResponseWriter, r *http.Request, apply func(map[string][]core.Sample) error) {
	var req DataBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	batch, err := DecodeBatch(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := apply(batch); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MutationResponse{
		Status: "ok",
		Stats:  a.session.Stats(),
	})
}

// DecodeBatch converts wire pairs to samples.
func DecodeBatch(req DataBatchRequest) (map[string][]core.Sample, error) {
	batch := make(map[string][]core.Sample, len(req.Signals))
	for name, pairs := range req.Signals {
		samples, err := decodeSamplePairs(name, pairs)
		if err != nil {
			return nil, err
		}
		batch[name] = samples
	}
	return batch, nil
}

// decodeSamplePairs converts one signal's wire pairs.  Timestamps
// arrive as JSON numbers, so they must be checked for integrality here
// before the int64 conversion can be trusted.
func decodeSamplePairs(name string, pairs [][2]float64) ([]core.Sample, error) {
	samples := make([]core.Sample, len(pairs))
	for i, p := range pairs {
		ts := p[0]
		if math.IsNaN(ts) || math.IsInf(ts, 0) || ts != math.Trunc(ts) {
			return nil, fmt.Errorf("%w: signal %q pair %d has non-integral timestamp", core.ErrInvalidSample, name, i)
		}
		samples[i] = core.Sample{TimestampMs: int64(ts), Value: p[1]}
	}
	return samples, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, core.ErrInvalidSample) || errors.Is(err, core.ErrUnknownSignal) {
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
