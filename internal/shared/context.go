package shared

import "context"

// Actor identifies the authenticated caller of a request.
type Actor struct {
	ID    string
	Name  string
	Email string
}

type actorContextKey struct{}

// ContextWithActor stores the verified actor in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context, or nil when unauthenticated.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}

// ActorID returns the actor id, or "system" for calls without a verified actor
// (batch jobs, tests).
func ActorID(ctx context.Context) string {
	if actor := ActorFromContext(ctx); actor != nil && actor.ID != "" {
		return actor.ID
	}
	return "system"
}
