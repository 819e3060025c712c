package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/meridian/internal/application"
	"github.com/jobrunner/meridian/internal/domain"
)

// TransformRequest is the body of a batch transformation. Exactly one of
// Coordinates and Geometry must be set.
type TransformRequest struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	Coordinates [][]float64       `json:"coordinates,omitempty"`
	Geometry    *geojson.Geometry `json:"geometry,omitempty"`
}

// TransformResponse is the result of a transformation.
type TransformResponse struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	Coordinate  []float64         `json:"coordinate,omitempty"`
	Coordinates [][]float64       `json:"coordinates,omitempty"`
	Geometry    *geojson.Geometry `json:"geometry,omitempty"`
}

// handleGetCRS resolves a single code.
func (s *Server) handleGetCRS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	c, err := s.crsService.Resolve(r.Context(), code)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, formatCRS(c))
}

// handleListCRS lists the codes of the definition source and the codes
// currently resolved.
func (s *Server) handleListCRS(w http.ResponseWriter, r *http.Request) {
	codes, err := s.codes.Codes(r.Context())
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.String()
	}

	response := map[string]interface{}{
		"codes": names,
		"count": len(names),
	}
	if s.registry != nil {
		response["cached"] = s.registry.Len()
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleAuto synthesizes a WMS auto CRS from id, lon and lat parameters.
func (s *Server) handleAuto(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	id, err := strconv.Atoi(q.Get("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}
	lon, err := parseFloatParam(q.Get("lon"), "lon")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lat, err := parseFloatParam(q.Get("lat"), "lat")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.crsService.SynthesizeAuto(r.Context(), id, lon, lat)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, formatCRS(c))
}

// handleTransformPoint transforms a coordinate given as query parameters.
func (s *Server) handleTransformPoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		s.writeError(w, http.StatusBadRequest, "from and to parameters are required")
		return
	}

	x, err := parseFloatParam(q.Get("x"), "x")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseFloatParam(q.Get("y"), "y")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := domain.Coordinate{X: x, Y: y}
	dims := 2
	if z := q.Get("z"); z != "" {
		if c.Z, err = parseFloatParam(z, "z"); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dims = 3
	}

	out, err := s.crsService.Transform(r.Context(), from, to, c)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, TransformResponse{
		From:       from,
		To:         to,
		Coordinate: coordinateToSlice(out, dims),
	})
}

// handleTransformBatch transforms a coordinate list or a GeoJSON geometry.
func (s *Server) handleTransformBatch(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.From == "" || req.To == "" {
		s.writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	switch {
	case req.Geometry != nil && req.Coordinates != nil:
		s.writeError(w, http.StatusBadRequest, "coordinates and geometry are mutually exclusive")
	case req.Geometry != nil:
		s.transformGeometry(w, r, req)
	case len(req.Coordinates) > 0:
		s.transformCoordinates(w, r, req)
	default:
		s.writeError(w, http.StatusBadRequest, "coordinates or geometry required")
	}
}

func (s *Server) transformCoordinates(w http.ResponseWriter, r *http.Request, req TransformRequest) {
	if len(req.Coordinates) > s.config.MaxBatchSize {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("at most %d coordinates per request", s.config.MaxBatchSize))
		return
	}

	coords := make([]domain.Coordinate, len(req.Coordinates))
	for i, c := range req.Coordinates {
		switch len(c) {
		case 2:
			coords[i] = domain.Coordinate{X: c[0], Y: c[1]}
		case 3:
			coords[i] = domain.Coordinate{X: c[0], Y: c[1], Z: c[2]}
		default:
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("coordinate %d has %d values, want 2 or 3", i, len(c)))
			return
		}
	}

	out, err := s.crsService.TransformAll(r.Context(), req.From, req.To, coords)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	result := make([][]float64, len(out))
	for i, c := range out {
		result[i] = coordinateToSlice(c, len(req.Coordinates[i]))
	}
	s.writeJSON(w, http.StatusOK, TransformResponse{From: req.From, To: req.To, Coordinates: result})
}

func (s *Server) transformGeometry(w http.ResponseWriter, r *http.Request, req TransformRequest) {
	g := req.Geometry.Geometry()
	if g == nil {
		s.writeError(w, http.StatusBadRequest, "unsupported geometry")
		return
	}

	out, err := s.crsService.TransformGeometry(r.Context(), req.From, req.To, g)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, TransformResponse{From: req.From, To: req.To, Geometry: geojson.NewGeometry(out)})
}

// handleRefresh drops negatively cached codes so that definitions added to the
// source become visible.
func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if s.registry == nil {
		s.writeError(w, http.StatusNotFound, "Registry not available")
		return
	}
	dropped := s.registry.NegativeLen()
	s.registry.Refresh()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"dropped": dropped,
		"cached":  s.registry.Len(),
	})
}

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":       boolToStatus(details.Healthy),
		"ready":        details.Ready,
		"crs_cached":   details.CRSCached,
		"paths_cached": details.PathsCached,
		"components":   details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI spec", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

// handleSync handles the sync trigger endpoint.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.syncService.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			w.Header().Set("Retry-After", "30")
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again in 30 seconds.")
			return
		}
		s.logger.Error("sync failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func parseFloatParam(v, name string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return f, nil
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupported),
		errors.Is(err, domain.ErrProjectionDomain),
		errors.Is(err, domain.ErrNoTransformationPath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBackingStore):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError writes the error with the status it maps to. Server
// side failures are logged and not echoed to the client.
func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		s.writeError(w, status, http.StatusText(status))
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeError(w, status, validationErr.Message)
		return
	}
	s.writeError(w, status, err.Error())
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}
