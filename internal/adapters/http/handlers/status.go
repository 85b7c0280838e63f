package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/http/dto"
	"github.com/jsamuelsen/resonance-bot/internal/app"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/telemetry"
)

// defaultUpcomingFires is used when the schedule endpoint gets no count.
const defaultUpcomingFires = 5

// RunnerStatus reports the scheduler state. Implemented by *app.JobRunner.
type RunnerStatus interface {
	Status() app.Status
}

// CaptionPreviewer renders a caption without publishing. Implemented by *app.PublishCycle.
type CaptionPreviewer interface {
	Caption(ctx context.Context, at time.Time) string
}

// StatusHandler serves the read-only /api/v1 endpoints.
type StatusHandler struct {
	runner   RunnerStatus
	captions CaptionPreviewer
	zone     string
	loc      *time.Location

	// now is overridable for testing.
	now func() time.Time
}

// NewStatusHandler creates a status handler rendering local times in referenceZone.
func NewStatusHandler(runner RunnerStatus, captions CaptionPreviewer, referenceZone string) (*StatusHandler, error) {
	loc, err := domain.LoadZone(referenceZone)
	if err != nil {
		return nil, err
	}

	return &StatusHandler{
		runner:   runner,
		captions: captions,
		zone:     referenceZone,
		loc:      loc,
		now:      time.Now,
	}, nil
}

// Status handles GET /api/v1/status.
func (h *StatusHandler) Status(c *gin.Context) {
	s := h.runner.Status()

	resp := dto.StatusResponse{
		State:     s.State.String(),
		FirstFire: dto.NewFireTime(s.FirstFire, h.loc),
		Period:    s.Period.String(),
		Cycles:    s.Cycles,
		Failures:  s.Failures,
		Skipped:   s.Skipped,
	}

	if s.State != app.StateStopped && !s.NextFire.IsZero() {
		next := dto.NewFireTime(s.NextFire, h.loc)
		resp.NextFire = &next
	}

	if !s.LastFire.IsZero() {
		last := &dto.CycleSummary{
			StartedAt: dto.NewFireTime(s.LastFire, h.loc),
			Result:    string(s.LastResult),
			Error:     s.LastError,
			Duration:  s.LastDuration.String(),
		}

		if !s.LastSuccess.IsZero() {
			success := s.LastSuccess.UTC()
			last.LastSuccess = &success
		}

		resp.LastCycle = last
	}

	c.JSON(http.StatusOK, resp)
}

// Schedule handles GET /api/v1/schedule?count=N, listing the next N fires
// on the runner's grid.
func (h *StatusHandler) Schedule(c *gin.Context) {
	var q dto.ScheduleQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		respondInvalidQuery(c, err)
		return
	}

	count := q.Count
	if count == 0 {
		count = defaultUpcomingFires
	}

	s := h.runner.Status()
	next := domain.NextFire(h.now(), s.FirstFire, s.Period)

	fires := make([]dto.FireTime, 0, count)
	for i := range count {
		fires = append(fires, dto.NewFireTime(next.Add(time.Duration(i)*s.Period), h.loc))
	}

	c.JSON(http.StatusOK, dto.ScheduleResponse{
		ReferenceZone: h.zone,
		Period:        s.Period.String(),
		Fires:         fires,
	})
}

// Caption handles GET /api/v1/caption?at=RFC3339. Nothing is fetched or published.
func (h *StatusHandler) Caption(c *gin.Context) {
	var q dto.CaptionQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		respondInvalidQuery(c, err)
		return
	}

	at := q.At
	if at.IsZero() {
		at = h.now()
	}

	caption := h.captions.Caption(c.Request.Context(), at)

	c.JSON(http.StatusOK, dto.CaptionResponse{
		At:      at.UTC(),
		Caption: caption,
		Length:  utf8.RuneCountInString(caption),
	})
}

// RegisterRoutes registers the status routes on rg.
func (h *StatusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/status", h.Status)
	rg.GET("/schedule", h.Schedule)
	rg.GET("/caption", h.Caption)
}

func respondInvalidQuery(c *gin.Context, err error) {
	traceID := telemetry.TraceID(c.Request.Context())

	if errors.Is(err, dto.ErrValidation) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrorCodeValidation,
			"query validation failed",
			dto.ValidationErrors(err),
		).WithTraceID(traceID))

		return
	}

	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.ErrorCodeValidation,
		err.Error(),
	).WithTraceID(traceID))
}
