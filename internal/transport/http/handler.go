// Package httptransport is the thin HTTP layer over the issuance pipeline.
// It owns request decoding, validation and error translation; business
// logic stays in the pipeline service.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sdfactory/internal/credential"
	"sdfactory/internal/document"
	"sdfactory/internal/platform/metrics"
	"sdfactory/internal/platform/middleware"
	dErrors "sdfactory/pkg/domain-errors"
	"sdfactory/pkg/platform/httputil"
	"sdfactory/pkg/requestcontext"
)

// RoleIssue is the role required to submit documents for issuance.
const RoleIssue = "add_self_descriptions"

// maxBodyBytes bounds accepted request bodies. Self-description documents
// are small; anything near this limit is garbage.
const maxBodyBytes = 1 << 20

// Processor runs the issuance pipeline for one validated document.
type Processor interface {
	Process(ctx context.Context, doc document.Document) (credential.Bundle, error)
}

// Handler handles the self-description issuance endpoint.
type Handler struct {
	logger       *slog.Logger
	pipeline     Processor
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	enforceAuth  bool
}

// New creates the issuance Handler. metrics may be nil.
func New(pipeline Processor, jwtValidator middleware.JWTValidator, enforceAuth bool, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:       logger,
		pipeline:     pipeline,
		metrics:      m,
		jwtValidator: jwtValidator,
		enforceAuth:  enforceAuth,
	}
}

// Register registers the issuance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	sdRouter := chi.NewRouter()
	sdRouter.Use(middleware.Recovery(h.logger))
	sdRouter.Use(middleware.RequestID)
	sdRouter.Use(middleware.Logger(h.logger))
	sdRouter.Use(middleware.Latency(h.metrics))
	sdRouter.Use(middleware.RequireAuth(h.jwtValidator, RoleIssue, h.enforceAuth, h.logger, h.metrics))
	sdRouter.Post("/api/rel3/selfdescription", h.handleIssue)

	r.Mount("/", sdRouter)
}

type issueResponse struct {
	ExternalID   string    `json:"externalId"`
	Credentials  int       `json:"credentials"`
	DispatchedAt time.Time `json:"dispatchedAt"`
}

// handleIssue accepts one business document, runs the pipeline and answers
// 202 once the downstream sink has acknowledged the bundle.
func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	raw, err := httputil.ReadBody(w, r, maxBodyBytes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// ParseRequest validates the document; anything it returns is ready for
	// the pipeline.
	doc, err := document.ParseRequest(raw)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected document",
			"request_id", requestID,
			"error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	bundle, err := h.pipeline.Process(ctx, doc)
	if err != nil {
		// The pipeline logs its own failures; here only the translation to
		// the wire happens.
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.New(dErrors.CodeInternal, "processing failed")
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, issueResponse{
		ExternalID:   bundle.ExternalID,
		Credentials:  len(bundle.Credentials),
		DispatchedAt: requestcontext.Now(ctx).UTC(),
	})
}
