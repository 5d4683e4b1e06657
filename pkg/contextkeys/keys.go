package contextkeys

type contextKey string

// ActorKey holds the authenticated authz.Actor for the current request.
const ActorKey contextKey = "actor"
