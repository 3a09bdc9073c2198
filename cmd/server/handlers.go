package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/resilience"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const apiChannel = "api"

// createAssessment godoc
// @Summary      Assess frailty risk
// @Description  Scores a complete patient record and returns the clamped probability, risk tier, guidance and the ordered per-feature contributions.
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        record  body      types.AssessmentRequest  true  "Patient record"
// @Success      200     {object}  types.AssessmentResponse
// @Failure      400     {object}  types.ErrorResponse
// @Failure      413     {object}  types.ErrorResponse
// @Failure      415     {object}  types.ErrorResponse
// @Failure      429     {object}  types.ErrorResponse
// @Router       /api/v1/assessments [post]
func (s *server) createAssessment(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString(monitoring.RequestIDKey)

	var req types.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	record, err := req.Record()
	if err != nil {
		var verr *analysis.ValidationError
		if !errors.As(err, &verr) {
			abortWithError(c, apperrors.ToAppError(err))
			return
		}

		appErr := apperrors.NewFieldValidationError("invalid patient record", verr.FieldMessages())
		fields := appErr.FieldNames()

		s.metrics.RecordValidationFailure(fields)
		s.logger.ValidationLogger(requestID, apiChannel, fields)
		abortWithError(c, appErr)
		return
	}

	a := s.scorer.Assess(record)
	s.metrics.RecordAssessment(string(a.Tier), apiChannel, a.Probability)
	s.logger.AssessmentLogger(requestID, apiChannel, string(a.Tier), a.Probability, time.Since(start))

	c.JSON(http.StatusOK, types.NewAssessmentResponse(uuid.NewString(), a, time.Now()))
}

// getModel godoc
// @Summary      Model coefficients
// @Description  Returns the base value, probability bounds, tier thresholds and the coefficient term of every field in attribution order.
// @Tags         model
// @Produce      json
// @Success      200  {object}  types.ModelResponse
// @Router       /api/v1/model [get]
func (s *server) getModel(c *gin.Context) {
	c.JSON(http.StatusOK, types.NewModelResponse(s.scorer.Model()))
}

// getFields godoc
// @Summary      Form schema
// @Description  Lists the input fields in form order with their domains, options and defaults.
// @Tags         model
// @Produce      json
// @Success      200  {object}  types.FieldsResponse
// @Router       /api/v1/fields [get]
func (s *server) getFields(c *gin.Context) {
	c.JSON(http.StatusOK, types.NewFieldsResponse())
}

// healthCheck godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func (s *server) healthCheck(c *gin.Context) {
	status := "ok"
	deps := make(map[string]types.DependencyStatus)
	for name, h := range s.health.GetAllServiceHealth() {
		deps[name] = types.DependencyStatus{
			Status:    h.Level.String(),
			ErrorRate: h.ErrorRate,
			Message:   h.StatusMessage,
		}
		// scoring never depends on these, so the service stays up
		if h.Level != resilience.LevelNormal {
			status = "degraded"
		}
	}

	metrics := s.metrics.GetStats()
	metrics["rate_limiter"] = s.limiter.GetStats()
	metrics["compression"] = s.compression.GetStats()

	c.JSON(http.StatusOK, types.HealthResponse{
		Status:       status,
		Version:      version,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
		Dependencies: deps,
		Metrics:      metrics,
	})
}

// bindError maps a JSON decoding failure onto the client-facing error.
func bindError(err error) *apperrors.AppError {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return apperrors.ToAppError(err)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return apperrors.NewFieldValidationError("invalid patient record", map[string]string{
			typeErr.Field: typeErr.Field + " must be a number",
		})
	case errors.As(err, &typeErr), errors.As(err, &syntaxErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.NewValidationError("request body must be a JSON object", err.Error())
	}

	appErr := apperrors.ToAppError(err)
	if appErr.Category == apperrors.CategoryInternal {
		return apperrors.NewValidationError("malformed request body", err.Error())
	}
	return appErr
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	appErr.RequestID = c.GetString(apperrors.RequestIDKey)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
}
