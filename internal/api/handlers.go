package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/RectFit/internal/engine"
	"github.com/piwi3910/RectFit/internal/model"
	"github.com/piwi3910/RectFit/internal/store"
)

// FitRequest is the body of POST /api/v1/fit. Settings, when present,
// override individual fields of the server's defaults. RegionIDs, when
// present, stores the result under store.Key(RegionIDs).
type FitRequest struct {
	Points    []model.Point2D `json:"points"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	RegionIDs []string        `json:"region_ids,omitempty"`
}

// FitResponse is the body of a successful fit.
type FitResponse struct {
	Rectangle model.Rectangle `json:"rectangle"`
	Method    model.Method    `json:"method"`
	ElapsedMs float64         `json:"elapsed_ms"`
	Truncated bool            `json:"truncated"`
	Key       string          `json:"key,omitempty"`
}

func (s *Server) fit(c *gin.Context) {
	var req FitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	settings, err := s.requestSettings(req.Settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings: " + err.Error()})
		return
	}

	res, err := engine.New(settings, engine.WithCache(s.cache)).Fit(c.Request.Context(), model.Outline(req.Points))
	switch {
	case errors.Is(err, engine.ErrInvalidPolygon), errors.Is(err, engine.ErrDegeneratePolygon):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, engine.ErrNoFeasibleRectangle):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.logger.Error("fit failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := FitResponse{
		Rectangle: res.Rectangle,
		Method:    res.Method,
		ElapsedMs: float64(res.Elapsed.Microseconds()) / 1000,
		Truncated: res.Truncated,
	}
	if len(req.RegionIDs) > 0 && s.store != nil {
		resp.Key = store.Key(req.RegionIDs)
		if err := s.store.Put(store.NewRecord(resp.Key, res)); err != nil {
			s.logger.Error("failed to store result", "key", resp.Key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store result"})
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// requestSettings overlays the request's settings object on the server
// defaults. Slices are copied first so decoding cannot write into the
// shared defaults.
func (s *Server) requestSettings(raw json.RawMessage) (model.FitSettings, error) {
	settings := s.settings
	settings.AspectRatios = append([]float64(nil), s.settings.AspectRatios...)
	settings.ConcaveAspectRatios = append([]float64(nil), s.settings.ConcaveAspectRatios...)
	if len(raw) == 0 || string(raw) == "null" {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return model.FitSettings{}, err
	}
	if _, err := model.ParseCentroidStrategy(string(settings.CentroidStrategy)); err != nil {
		return model.FitSettings{}, err
	}
	return settings, nil
}

func (s *Server) result(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result store configured"})
		return
	}
	rec, err := s.store.Get(c.Param("key"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to load result", "key", c.Param("key"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) results(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, []store.Record{})
		return
	}
	recs, err := s.store.List()
	if err != nil {
		s.logger.Error("failed to list results", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	c.JSON(http.StatusOK, recs)
}
