package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/solar-forecast-service/internal/chart"
	"github.com/couchcryptid/solar-forecast-service/internal/dataset"
	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/forecast"
	"github.com/couchcryptid/solar-forecast-service/internal/observability"
	"github.com/couchcryptid/solar-forecast-service/internal/report"
	"github.com/couchcryptid/solar-forecast-service/internal/training"
)

// MsgAdded is the plain-text response to a successful POST /add.
const MsgAdded = "Data added successfully!"

// MeasurementAppender persists a validated measurement.
type MeasurementAppender interface {
	Append(m domain.Measurement) error
	Path() string
}

// MeasurementPublisher forwards an appended measurement downstream.
type MeasurementPublisher interface {
	Publish(ctx context.Context, m domain.Measurement) error
}

// ModelSource exposes the trained models for reporting.
type ModelSource interface {
	Models() (*training.ModelSet, error)
}

// Handler serves the dashboard and API routes.
type Handler struct {
	predictor forecast.Predictor
	models    ModelSource
	appender  MeasurementAppender
	publisher MeasurementPublisher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewHandler wires the route handlers. publisher may be nil when publishing
// is disabled.
func NewHandler(
	predictor forecast.Predictor,
	models ModelSource,
	appender MeasurementAppender,
	publisher MeasurementPublisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		predictor: predictor,
		models:    models,
		appender:  appender,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

type dashboardView struct {
	Interval         domain.Interval
	Intervals        []domain.Interval
	Result           *forecast.Result
	Error            string
	Chart            template.HTML
	ImportanceCharts []template.HTML
}

// dashboard renders the page; a POST computes and charts the prediction for
// the interval in the path (hourly on /).
func (h *Handler) dashboard(c *gin.Context) {
	raw := c.Param("interval")
	if raw == "" {
		raw = string(domain.Hourly)
	}
	view := dashboardView{Interval: domain.Interval(raw), Intervals: domain.Intervals}

	if c.Request.Method == http.MethodPost {
		if err := h.render(c.Request.Context(), raw, &view); err != nil {
			view.Error = "Error: " + err.Error()
		}
	}
	c.HTML(http.StatusOK, "index.html", view)
}

func (h *Handler) render(ctx context.Context, raw string, view *dashboardView) error {
	interval, err := domain.ParseInterval(raw)
	if err != nil {
		return err
	}
	view.Interval = interval

	start := time.Now()
	res, err := h.predict(ctx, interval)
	if err != nil {
		return err
	}

	view.Result = res
	if view.Chart, err = chart.Production(res); err != nil {
		return err
	}
	for _, loc := range res.Locations {
		svg, err := chart.Importance(loc.Importance, res.FeatureNames, "Feature importance - "+loc.Label)
		if err != nil {
			return err
		}
		view.ImportanceCharts = append(view.ImportanceCharts, svg)
	}
	svg, err := chart.Importance(res.Importance, res.FeatureNames, "Feature importance - Total production")
	if err != nil {
		return err
	}
	view.ImportanceCharts = append(view.ImportanceCharts, svg)

	h.metrics.PredictionDuration.WithLabelValues(string(interval)).Observe(time.Since(start).Seconds())
	return nil
}

func (h *Handler) predict(ctx context.Context, interval domain.Interval) (*forecast.Result, error) {
	res, err := h.predictor.Predict(ctx, interval)
	if err != nil {
		h.metrics.Predictions.WithLabelValues(string(interval), "error").Inc()
		h.logger.Warn("prediction failed", "interval", interval, "error", err)
		return nil, err
	}
	h.metrics.Predictions.WithLabelValues(string(interval), "success").Inc()
	return res, nil
}

type addView struct {
	Now       string
	Locations []addLocation
}

type addLocation struct {
	Label  string
	Number int
}

func (h *Handler) addForm(c *gin.Context) {
	view := addView{Now: domain.Now().Format(domain.FormTimeLayout)}
	for _, loc := range domain.Locations {
		view.Locations = append(view.Locations, addLocation{Label: loc.Label(), Number: int(loc)})
	}
	c.HTML(http.StatusOK, "add_data.html", view)
}

// addMeasurement validates the form, appends the row to the dataset and
// optionally publishes it. Responses are plain text.
func (h *Handler) addMeasurement(c *gin.Context) {
	m, err := parseMeasurementForm(c)
	if err == nil {
		err = h.appender.Append(m)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMeasurement) || errors.Is(err, domain.ErrInvalidTime) || errors.Is(err, errInvalidField) {
			h.metrics.ValidationFailures.Inc()
		} else {
			h.logger.Error("append measurement failed", "error", err)
		}
		c.String(http.StatusOK, "Error: %s", err.Error())
		return
	}
	h.metrics.MeasurementsAppended.Inc()
	h.logger.Info("measurement appended", "time", domain.FormatTime(m.Time), "path", h.appender.Path())

	if h.publisher != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.publisher.Publish(ctx, m); err != nil {
			h.logger.Warn("publish measurement failed", "error", err)
		}
	}
	c.String(http.StatusOK, MsgAdded)
}

var errInvalidField = errors.New("invalid field")

type formField struct {
	name string
	dst  *float64
}

func parseMeasurementForm(c *gin.Context) (domain.Measurement, error) {
	var m domain.Measurement
	t, err := domain.ParseFormTime(c.PostForm("datetime"))
	if err != nil {
		return m, err
	}
	m.Time = t

	fields := []formField{
		{"air_temp", &m.Features.AirTemperature},
		{"cloud_opacity", &m.Features.CloudOpacity},
		{"dhi", &m.Features.DHI},
		{"dni", &m.Features.DNI},
		{"ebh", &m.Features.EBH},
		{"ghi", &m.Features.GHI},
	}
	for _, loc := range domain.Locations {
		fields = append(fields, formField{fmt.Sprintf("prod_loc%d", int(loc)), &m.Production[loc.Index()]})
	}

	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm(f.name)), 64)
		if err != nil {
			return m, fmt.Errorf("%w: %s must be a number", errInvalidField, f.name)
		}
		*f.dst = v
	}
	return m, domain.ValidateMeasurement(m)
}

func (h *Handler) apiPredict(c *gin.Context) {
	interval, err := domain.ParseInterval(c.Param("interval"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.predict(c.Request.Context(), interval)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) apiModels(c *gin.Context) {
	set, err := h.models.Models()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"regressor":  set.Kind,
		"strategy":   set.Strategy,
		"total_mode": set.TotalMode,
		"trained_at": set.TrainedAt,
		"intervals":  set.Intervals(),
	})
}

// export streams the current dataset file and the model evaluation as an
// Excel workbook.
func (h *Handler) export(c *gin.Context) {
	measurements, _, err := dataset.Load(h.appender.Path())
	if err != nil {
		h.logger.Error("export: load dataset failed", "error", err)
		c.String(http.StatusInternalServerError, "Error: %s", err.Error())
		return
	}
	// The workbook still carries the dataset before models are installed.
	set, _ := h.models.Models()

	f, err := report.Workbook(measurements, set)
	if err != nil {
		h.logger.Error("export: build workbook failed", "error", err)
		c.String(http.StatusInternalServerError, "Error: %s", err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="solar-forecast.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("export: write workbook failed", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, forecast.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownInterval), errors.Is(err, training.ErrIntervalUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
