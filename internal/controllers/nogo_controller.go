package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/hub"
	"cycle_planner/internal/metrics"
	"cycle_planner/internal/models"
	"cycle_planner/internal/store"
)

// NogoController serves the nogo API on top of a store.Service.
type NogoController struct {
	svc     *store.Service
	feed    *hub.NogoHub
	metrics *metrics.Collector
}

func NewNogoController(svc *store.Service, feed *hub.NogoHub, m *metrics.Collector) *NogoController {
	return &NogoController{svc: svc, feed: feed, metrics: m}
}

// ListNogos returns every stored nogo as {_id, type, coordinates}.
func (nc *NogoController) ListNogos(c *gin.Context) {
	nogos, err := nc.svc.List(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ListNogos: failed to list nogos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch nogos"})
		return
	}

	docs := make([]models.NogoDocument, 0, len(nogos))
	for _, n := range nogos {
		docs = append(docs, n.Document())
	}
	c.JSON(http.StatusOK, docs)
}

// CreateNogos stores every LineString in the body. The body is validated as a
// whole first; once it is well formed each insert is independent and the
// response is 200 even if some inserts failed.
func (nc *NogoController) CreateNogos(c *gin.Context) {
	var input []models.NogoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateNogos: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: expected an array of LineString geometries"})
		return
	}

	lines, err := parseNogoInputs(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
		return
	}

	res := nc.svc.CreateMany(c.Request.Context(), lines)
	nc.metrics.ObserveBulk("create", res.Succeeded, res.Missing, res.Failed)
	logrus.WithFields(logrus.Fields{
		"requested": res.Requested,
		"created":   res.Succeeded,
		"failed":    res.Failed,
	}).Info("nogos created")

	if res.Changed() {
		nc.feed.Publish(hub.ChangeEvent{Created: res.Succeeded})
	}
	c.Status(http.StatusOK)
}

// DeleteNogos removes the nogos whose ids are listed in the body. Unknown ids
// are skipped silently.
func (nc *NogoController) DeleteNogos(c *gin.Context) {
	var ids []string
	if err := c.ShouldBindJSON(&ids); err != nil {
		logrus.WithError(err).Warn("DeleteNogos: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if ids == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: expected an array of nogo ids"})
		return
	}

	res := nc.svc.DeleteMany(c.Request.Context(), ids)
	nc.metrics.ObserveBulk("delete", res.Succeeded, res.Missing, res.Failed)
	logrus.WithFields(logrus.Fields{
		"requested": res.Requested,
		"deleted":   res.Succeeded,
		"missing":   res.Missing,
		"failed":    res.Failed,
	}).Info("nogos deleted")

	if res.Changed() {
		nc.feed.Publish(hub.ChangeEvent{Deleted: res.Succeeded})
	}
	c.Status(http.StatusOK)
}

// HandleNogoFeed upgrades to the websocket change feed.
func (nc *NogoController) HandleNogoFeed(c *gin.Context) {
	nc.feed.ServeWS(c.Writer, c.Request)
}

// Healthz reports liveness.
func (nc *NogoController) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Readyz reports whether the backing store answers.
func (nc *NogoController) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := nc.svc.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Readyz: store ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true, "serverTime": time.Now()})
}

func parseNogoInputs(input []models.NogoInput) ([]*geom.LineString, error) {
	lines := make([]*geom.LineString, 0, len(input))
	for i, in := range input {
		if in.Type != "" && in.Type != models.NogoType {
			return nil, fmt.Errorf("nogo %d: %w", i, geo.ErrNotALineString)
		}
		ls, err := geo.NewLineString(in.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("nogo %d: %w", i, err)
		}
		lines = append(lines, ls)
	}
	return lines, nil
}
