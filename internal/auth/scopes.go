package auth

// Scopes understood by the workout API.
const (
	ScopeWorkoutsRead  = "workouts:read"
	ScopeWorkoutsWrite = "workouts:write"
)
