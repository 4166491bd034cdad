package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/flood-vulnerability-service/internal/analysis"
	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

func errorBody(msg string) errorResponse {
	return errorResponse{Error: msg, Status: "error"}
}

type analysisRequest struct {
	PlaceName string         `json:"place_name"`
	FVIData   *domain.Result `json:"fvi_data"`
}

type analysisResponse struct {
	Analysis   string `json:"analysis"`
	RAGContext string `json:"rag_context"`
	Status     string `json:"status"`
}

// handleFVI scores a district or coordinate pair. A resolvable district
// overrides lat and lon.
func (s *Server) handleFVI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if name := strings.TrimSpace(q.Get("district")); name != "" && s.deps.Districts != nil {
		if d, ok := s.deps.Districts.Lookup(name); ok {
			sharedobs.WriteJSON(w, http.StatusOK, s.deps.Calculator.CalculateDistrict(r.Context(), d))
			return
		}
	}

	lat, latOK := parseCoord(q.Get("lat"), 90)
	lon, lonOK := parseCoord(q.Get("lon"), 180)
	if !latOK || !lonOK {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("invalid or missing coordinates"))
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, s.deps.Calculator.Calculate(r.Context(), lat, lon, nil))
}

func parseCoord(raw string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.PlaceName) == "" || req.FVIData == nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("Missing place_name or fvi_data"))
		return
	}
	if s.deps.Analyzer == nil {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorBody(analysis.ErrUnavailable.Error()))
		return
	}

	report, err := s.deps.Analyzer.Analyze(r.Context(), req.PlaceName, *req.FVIData)
	switch {
	case errors.Is(err, analysis.ErrUnavailable):
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	case err != nil:
		s.logger.Error("risk analysis failed", "place", req.PlaceName, "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody("Analysis failed: "+err.Error()))
	default:
		sharedobs.WriteJSON(w, http.StatusOK, analysisResponse{
			Analysis:   report.Analysis,
			RAGContext: report.RAGContext,
			Status:     "success",
		})
	}
}

func (s *Server) handleDistricts(w http.ResponseWriter, _ *http.Request) {
	districts := []domain.District{}
	if s.deps.Districts != nil {
		districts = s.deps.Districts.All()
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"districts": districts})
}
