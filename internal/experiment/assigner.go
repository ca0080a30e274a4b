package experiment

import (
	"context"
	"hash/fnv"

	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/session"
)

// bucketCount is the resolution of the variant distribution. A visitor
// hashes to one of bucketCount buckets, split across variants by
// normalized weight.
const bucketCount = 10000

// Assigner places visitors into experiment variants. Assignment is sticky
// for the life of the session and deterministic for a given (session id,
// experiment id) pair, so a visitor lands in the same bucket even if the
// cached assignment is lost.
type Assigner struct {
	sessions session.Store
	log      logger.Logger
}

// NewAssigner creates an Assigner backed by the given session store.
func NewAssigner(sessions session.Store, log logger.Logger) *Assigner {
	return &Assigner{sessions: sessions, log: log}
}

// Assign returns the variant id for the visitor, or ("", false) when the
// visitor is not eligible. Ineligibility is never cached, so a later
// context change (an SPA navigation altering URL targeting, say) can still
// become eligible.
func (a *Assigner) Assign(
	ctx context.Context,
	sessionID string,
	exp *domain.Experiment,
	rctx RuleContext,
) (string, bool) {
	if !exp.IsRunning() {
		return "", false
	}

	sess, err := a.sessions.Get(ctx, sessionID)
	if err != nil {
		a.log.Warn("Session lookup failed, skipping assignment",
			logger.String("experiment_id", exp.ID),
			logger.Error(err),
		)
		return "", false
	}

	if variant, ok := sess.AssignmentFor(exp.ID); ok {
		return variant, true
	}

	if !evaluateRules(exp.TargetingRules, rctx) {
		return "", false
	}

	variant := PickVariant(sess.SessionID, exp)
	if variant == "" {
		return "", false
	}

	if err := a.sessions.SetAssignment(ctx, sess.SessionID, exp.ID, variant); err != nil {
		// The pick is deterministic, so a failed cache write only costs a
		// recomputation on the next request.
		a.log.Warn("Failed to cache assignment",
			logger.String("experiment_id", exp.ID),
			logger.Error(err),
		)
	}

	return variant, true
}

// PickVariant deterministically maps a session id to one of the
// experiment's variants using an FNV-1a hash against the cumulative
// normalized weight distribution. Exported for distribution tests.
func PickVariant(sessionID string, exp *domain.Experiment) string {
	if len(exp.Variants) == 0 {
		return ""
	}

	var total float64
	for i := range exp.Variants {
		total += exp.Variants[i].Weight
	}
	if total <= 0 {
		return ""
	}

	bucket := float64(hashBucket(sessionID, exp.ID))

	var cumulative float64
	for i := range exp.Variants {
		cumulative += exp.Variants[i].Weight / total * bucketCount
		if bucket < cumulative {
			return exp.Variants[i].ID
		}
	}

	// Floating point slack on the final boundary.
	return exp.Variants[len(exp.Variants)-1].ID
}

// hashBucket hashes (sessionID, experimentID) into [0, bucketCount).
func hashBucket(sessionID, experimentID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sessionID))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(experimentID))
	return h.Sum64() % bucketCount
}
