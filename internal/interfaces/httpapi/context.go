package httpapi

import (
	"context"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
)

type contextKey string

const (
	principalContextKey contextKey = "auth_principal"
	routeContextKey     contextKey = "route_pattern"
)

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}

// routeHolder is filled in by the innermost middleware once the mux has
// matched, so outer middleware can label by pattern instead of raw path.
type routeHolder struct {
	pattern string
}

func withRouteHolder(ctx context.Context) (context.Context, *routeHolder) {
	if holder, ok := ctx.Value(routeContextKey).(*routeHolder); ok {
		return ctx, holder
	}
	holder := &routeHolder{}
	return context.WithValue(ctx, routeContextKey, holder), holder
}

func routeHolderFromContext(ctx context.Context) *routeHolder {
	holder, _ := ctx.Value(routeContextKey).(*routeHolder)
	return holder
}
