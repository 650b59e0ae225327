package reconcile

import "errors"

// ErrNoNewVersion is returned by Detect when every upstream release is
// already tracked. Callers treat it as a normal terminal state, not a
// failure.
var ErrNoNewVersion = errors.New("no new upstream version")

// ErrBadTriggerRef is returned when the trigger reference does not carry a
// parseable upstream version.
var ErrBadTriggerRef = errors.New("trigger reference is not an upstream version")

// ErrBuildConfigChanged is returned when the upstream build configuration
// changed between the predecessor and target releases. Bindings are not
// regenerated automatically across a build-system change, so the release
// requires manual intervention.
var ErrBuildConfigChanged = errors.New("upstream build configuration changed")

// ErrLineageGap is returned when the required ancestor cannot be located:
// the target has no upstream predecessor, or the downstream repository
// carries no lineage tag for it.
var ErrLineageGap = errors.New("no release lineage to branch from")
