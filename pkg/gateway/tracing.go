// Package gateway is the storefront's remote data gateway: products, carts,
// orders and users kept in PostgreSQL, with an optional Redis cache in front
// of the product listing.
package gateway

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gitlab.connectwisedev.com/storefront-service/pkg/gateway")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gateway."+name, trace.WithAttributes(attrs...))
}

// endSpan records err on span and ends it. It returns err unchanged.
func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// isBadIdentifier reports whether Postgres rejected an id literal (e.g. a
// malformed UUID); callers treat it as "not found".
func isBadIdentifier(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
