package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostLimitOrPrefersLimitPostsOverGenericLimit(t *testing.T) {
	r := &Runner{LimitPosts: 50, Limit: 10}
	assert.Equal(t, 50, r.postLimitOr(500))
}

func TestPostLimitOrFallsBackToGenericLimit(t *testing.T) {
	r := &Runner{Limit: 10}
	assert.Equal(t, 10, r.postLimitOr(500))
}

func TestPostLimitOrUsesDefaultWhenUnset(t *testing.T) {
	r := &Runner{}
	assert.Equal(t, 500, r.postLimitOr(500))
}

func TestRunRejectsUnknownStage(t *testing.T) {
	r := &Runner{}
	err := r.Run(context.Background(), Stage("not-a-real-stage"))
	assert.Error(t, err)
}

func TestNotifyHelpersNoOpWithoutHub(t *testing.T) {
	r := &Runner{}
	assert.NotPanics(t, func() {
		r.notifyStart("fetch")
		r.notifyDone("fetch", nil)
		r.notifyFailed("fetch", assert.AnError)
	})
}
