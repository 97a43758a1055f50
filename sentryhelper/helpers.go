// Package sentryhelper manages Sentry transactions and scope for the
// recommendation pipeline. Each request gets a cloned hub so breadcrumbs
// recorded by one pipeline run never leak into another.
package sentryhelper

import (
	"context"

	sentry "github.com/getsentry/sentry-go"
)

type contextKey string

const hubContextKey contextKey = "sentry_hub"

// StartPipelineTransaction creates a transaction with a cloned hub for one
// recommendation run. Spans started by the catalog, preview and classifier
// clients from the returned context attach to it.
func StartPipelineTransaction(ctx context.Context, seedID string) (context.Context, *sentry.Span) {
	hub := sentry.CurrentHub().Clone()
	ctx = context.WithValue(ctx, hubContextKey, hub)

	transaction := sentry.StartTransaction(ctx, "recommendation.pipeline",
		sentry.WithOpName("recommendation"),
		sentry.WithTransactionSource(sentry.SourceRoute),
	)
	transaction.SetTag("seed_track", seedID)
	hub.Scope().SetSpan(transaction)

	return transaction.Context(), transaction
}

// HubFromContext retrieves the cloned hub from context, falling back to
// the current hub when the context carries none.
func HubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return sentry.CurrentHub()
	}
	if hub, ok := ctx.Value(hubContextKey).(*sentry.Hub); ok && hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// AddBreadcrumb records a breadcrumb on the hub in context, isolated to
// this pipeline run.
func AddBreadcrumb(ctx context.Context, breadcrumb *sentry.Breadcrumb) {
	HubFromContext(ctx).AddBreadcrumb(breadcrumb, nil)
}

// CaptureException captures an error on the hub in context.
func CaptureException(ctx context.Context, err error) *sentry.EventID {
	return HubFromContext(ctx).CaptureException(err)
}

// CaptureMessage captures a message on the hub in context. Use this for
// notable non-error events.
func CaptureMessage(ctx context.Context, message string) *sentry.EventID {
	return HubFromContext(ctx).CaptureMessage(message)
}
