// Package pipeline orchestrates one document's journey from classified
// input to dispatched bundle: assemble, sign when the active profile signs
// locally, optionally self-verify the fresh proof, then deliver to the
// configured sink. The first failing stage terminates the run; later
// stages never execute and nothing is partially dispatched.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sdfactory/internal/assemble"
	"sdfactory/internal/credential"
	"sdfactory/internal/dispatch"
	"sdfactory/internal/document"
	"sdfactory/internal/pipeline/metrics"
	"sdfactory/internal/proof"
	dErrors "sdfactory/pkg/domain-errors"
)

// Service runs the issuance pipeline. It is stateless: every Process call
// is independent and safe to run concurrently.
type Service struct {
	converter *assemble.Converter
	signer    proof.Signer
	verify    func(credential.Credential) bool
	sink      dispatch.Sink
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics wires pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSelfVerification enables checking every freshly signed credential
// against the given predicate before dispatch. A failing check aborts the
// run: a proof the deployment cannot verify itself must never leave it.
func WithSelfVerification(verify func(credential.Credential) bool) Option {
	return func(s *Service) { s.verify = verify }
}

// WithTracer overrides the tracer, mainly for tests.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// New builds the pipeline service. A profile that signs locally requires a
// signer; that mismatch is a startup failure.
func New(converter *assemble.Converter, signer proof.Signer, sink dispatch.Sink, opts ...Option) (*Service, error) {
	if converter.Profile().Signs() && signer == nil {
		return nil, dErrors.Newf(dErrors.CodeConfiguration,
			"profile %q signs locally but no signing key is configured", converter.Profile())
	}

	s := &Service{
		converter: converter,
		signer:    signer,
		sink:      sink,
		logger:    slog.Default(),
		tracer:    otel.Tracer("sdfactory/pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Process runs the full pipeline for one validated document and returns the
// dispatched bundle.
func (s *Service) Process(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	kind := string(doc.DocumentKind())
	ctx, span := s.tracer.Start(ctx, "pipeline.process",
		trace.WithAttributes(
			attribute.String("document.kind", kind),
			attribute.String("document.external_id", doc.Meta().ExternalID),
		))
	start := time.Now()

	bundle, err := s.run(ctx, doc)
	s.metrics.ObserveProcessLatency(kind, time.Since(start))
	if err != nil {
		s.metrics.IncrementOutcome(kind, string(dErrors.CodeOf(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		s.logger.ErrorContext(ctx, "pipeline run failed",
			"kind", kind,
			"external_id", doc.Meta().ExternalID,
			"error", err)
		return credential.Bundle{}, err
	}

	s.metrics.IncrementOutcome(kind, "ok")
	span.End()
	s.logger.InfoContext(ctx, "bundle dispatched",
		"kind", kind,
		"external_id", doc.Meta().ExternalID,
		"credentials", len(bundle.Credentials))
	return bundle, nil
}

func (s *Service) run(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	bundle, err := s.converter.Convert(ctx, doc)
	if err != nil {
		return credential.Bundle{}, err
	}

	if s.converter.Profile().Signs() {
		signed := make([]credential.Credential, 0, len(bundle.Credentials))
		for _, cred := range bundle.Credentials {
			sc, err := s.signer.Sign(ctx, cred)
			if err != nil {
				return credential.Bundle{}, err
			}
			if s.verify != nil && !s.verify(sc) {
				return credential.Bundle{}, dErrors.Newf(dErrors.CodeCrypto,
					"fresh proof on credential %q failed self-verification", sc.ID)
			}
			signed = append(signed, sc)
		}
		bundle.Credentials = signed
		s.metrics.IncrementCredentialsSigned(len(signed))
	}

	if err := s.sink.Dispatch(ctx, bundle); err != nil {
		return credential.Bundle{}, err
	}
	return bundle, nil
}
