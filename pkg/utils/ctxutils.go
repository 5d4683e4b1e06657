package utils

import (
	"context"

	"lab-inventory-system/internal/authz"
	"lab-inventory-system/pkg/contextkeys"
	apperrors "lab-inventory-system/pkg/errors"
)

// ActorFromCtx extracts the authenticated actor placed by the auth
// middleware. Everything below the middleware receives the actor explicitly;
// this is the only place that touches the context value.
func ActorFromCtx(ctx context.Context) (authz.Actor, error) {
	actor, ok := ctx.Value(contextkeys.ActorKey).(authz.Actor)
	if !ok {
		return authz.Actor{}, apperrors.ErrActorNotInContext
	}
	return actor, nil
}

func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}
