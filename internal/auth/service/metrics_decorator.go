package service

import (
	"context"
	"time"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/metrics"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

// permissionResolverWithMetrics decorates PermissionResolver with metrics instrumentation.
type permissionResolverWithMetrics struct {
	next    PermissionResolver
	metrics metrics.BusinessMetrics
}

// NewPermissionResolverWithMetrics wraps a PermissionResolver with metrics recording.
func NewPermissionResolverWithMetrics(resolver PermissionResolver, m metrics.BusinessMetrics) PermissionResolver {
	return &permissionResolverWithMetrics{
		next:    resolver,
		metrics: m,
	}
}

// Resolve records metrics for permission resolution, cache hits included.
func (p *permissionResolverWithMetrics) Resolve(
	ctx context.Context,
	user *userDomain.User,
) ([]authDomain.Claim, error) {
	start := time.Now()
	claims, err := p.next.Resolve(ctx, user)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "auth", "permission_resolve", status)
	p.metrics.RecordDuration(ctx, "auth", "permission_resolve", time.Since(start), status)

	return claims, err
}
