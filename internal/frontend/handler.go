package frontend

import (
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/security"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	channel = "form"

	// multipartMemory bounds the parts held in memory; the body itself is
	// already capped by the request guards.
	multipartMemory = 32 << 10
)

// Handler serves the assessment form and its result page.
type Handler struct {
	tmpl    *template.Template
	scorer  *analysis.Scorer
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
}

// NewHandler parses the embedded templates. metrics and logger may be nil.
func NewHandler(scorer *analysis.Scorer, metrics *monitoring.Metrics, logger *monitoring.Logger) (*Handler, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		tmpl:    tmpl,
		scorer:  scorer,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// ShowForm renders the empty form with its default values.
func (h *Handler) ShowForm(c *gin.Context) {
	nonce, ok := h.nonce(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, newPageData(nonce, types.DefaultFormInput(), nil))
}

// Submit validates the posted form, scores it and renders the result below
// the form. Invalid input re-renders the form as entered with field messages.
func (h *Handler) Submit(c *gin.Context) {
	start := time.Now()
	nonce, ok := h.nonce(c)
	if !ok {
		return
	}
	requestID := c.GetString(apperrors.RequestIDKey)

	if err := parseForm(c.Request); err != nil {
		appErr := apperrors.ToAppError(err)
		if appErr.Category == apperrors.CategoryInternal {
			appErr = apperrors.NewValidationError("malformed form body", err.Error())
		}
		h.fail(c, appErr)
		return
	}

	in := types.FormInputFromValues(c.Request.PostForm)
	record, err := in.Record()
	if err != nil {
		var verr *analysis.ValidationError
		if !errors.As(err, &verr) {
			h.fail(c, apperrors.ToAppError(err))
			return
		}

		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.FieldMessages() {
			fields = append(fields, f)
		}
		if h.metrics != nil {
			h.metrics.RecordValidationFailure(fields)
		}
		if h.logger != nil {
			h.logger.ValidationLogger(requestID, channel, fields)
		}

		h.render(c, http.StatusBadRequest, newPageData(nonce, in, verr))
		return
	}

	a := h.scorer.Assess(record)
	if h.metrics != nil {
		h.metrics.RecordAssessment(string(a.Tier), channel, a.Probability)
	}
	if h.logger != nil {
		h.logger.AssessmentLogger(requestID, channel, string(a.Tier), a.Probability, time.Since(start))
	}

	data := newPageData(nonce, types.FormInputFromRecord(record), nil)
	data.Result = newResultView(a)
	h.render(c, http.StatusOK, data)
}

// parseForm reads url-encoded and multipart bodies into PostForm.
func parseForm(req *http.Request) error {
	if mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type")); mediaType == gin.MIMEMultipartPOSTForm {
		return req.ParseMultipartForm(multipartMemory)
	}
	return req.ParseForm()
}

func (h *Handler) nonce(c *gin.Context) (string, bool) {
	nonce := security.GetNonce(c)
	if nonce != "" {
		return nonce, true
	}

	slog.Warn("CSP nonce not found in context, generating new one")
	nonce, err := security.GenerateNonce()
	if err != nil {
		h.fail(c, apperrors.NewInternalError("csp nonce generation failed", err))
		return "", false
	}
	return nonce, true
}

func (h *Handler) render(c *gin.Context, status int, data pageData) {
	if err := renderPage(c, h.tmpl, status, data); err != nil {
		slog.Error("Failed to render page", "error", err, "path", c.Request.URL.Path)
		h.fail(c, apperrors.NewInternalError("page rendering failed", err))
	}
}

func (h *Handler) fail(c *gin.Context, appErr *apperrors.AppError) {
	appErr.RequestID = c.GetString(apperrors.RequestIDKey)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
}
