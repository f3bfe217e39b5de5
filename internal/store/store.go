package store

import "context"

// Storage keys. These mirror the keys the mobile client has always used, so a
// device upgrading to an engine-backed build keeps its state.
const (
	KeyAuthToken          = "reppy:auth_token"
	KeyUserID             = "reppy:user_id"
	KeyOnboardingProgress = "reppy:onboarding_progress"
	KeyActiveWorkout      = "reppy:active_workout"
)

// Store persists JSON-serializable values by string key. Implementations must
// keep values across process restarts; no atomicity across keys is required.
type Store interface {
	// Get unmarshals the value for key into dest and reports whether the key
	// existed. A missing key is not an error.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Remove deletes the key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error
}
