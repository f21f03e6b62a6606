package metadata

import (
	"context"

	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
)

// Annotator applies a metadata key/value pair to the target it is invoked with.
//
// Its shape is the boundary contract towards declarative annotation mechanisms:
// the annotated value, plus the annotated member's name when a member is annotated
// rather than the value as a whole.
// Member names scope the same way as in Define,
// where a dotted name aliases the equivalent multi segment path.
type Annotator func(target any, member ...string)

// Annotate captures the key/value pair and returns an Annotator that defines it
// on the targets it is invoked with.
//
// The returned Annotator is reusable.
// Invoking it with multiple targets defines the captured pair on each target
// independently, with Define's overwrite semantics,
// and the captured pair is immutable,
// which makes one Annotator safe to invoke concurrently from many definition sites.
//
// The Annotator shape has no error channel,
// so a target rejected by Define is logged at warn level and skipped,
// keeping speculative declarative use safe.
func (r *Registry) Annotate(key string, value any) Annotator {
	return func(target any, member ...string) {
		if err := r.Define(target, key, value, member...); err != nil {
			logger.Warn(context.Background(), "metadata annotation was skipped",
				logging.Field("key", key),
				logging.ErrField(err))
		}
	}
}
