package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRequestStatus(t *testing.T) {
	t.Run("approve from submitted", func(t *testing.T) {
		next, err := NextRequestStatus(RequestSubmitted, RequestActionApprove)
		require.NoError(t, err)
		assert.Equal(t, RequestApproved, next)
	})

	t.Run("approve from needs revision", func(t *testing.T) {
		next, err := NextRequestStatus(RequestNeedsRevision, RequestActionApprove)
		require.NoError(t, err)
		assert.Equal(t, RequestApproved, next)
	})

	t.Run("reject from submitted", func(t *testing.T) {
		next, err := NextRequestStatus(RequestSubmitted, RequestActionReject)
		require.NoError(t, err)
		assert.Equal(t, RequestRejected, next)
	})

	t.Run("request revision from submitted", func(t *testing.T) {
		next, err := NextRequestStatus(RequestSubmitted, RequestActionRequestRevision)
		require.NoError(t, err)
		assert.Equal(t, RequestNeedsRevision, next)
	})

	t.Run("resubmit closes the revision loop", func(t *testing.T) {
		next, err := NextRequestStatus(RequestNeedsRevision, RequestActionResubmit)
		require.NoError(t, err)
		assert.Equal(t, RequestSubmitted, next)
	})

	t.Run("fulfill from approved", func(t *testing.T) {
		next, err := NextRequestStatus(RequestApproved, RequestActionFulfill)
		require.NoError(t, err)
		assert.Equal(t, RequestFulfilled, next)
	})

	t.Run("approve from approved fails", func(t *testing.T) {
		_, err := NextRequestStatus(RequestApproved, RequestActionApprove)
		assert.Error(t, err)
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		for _, action := range []string{RequestActionApprove, RequestActionReject, RequestActionRequestRevision, RequestActionResubmit, RequestActionFulfill} {
			_, err := NextRequestStatus(RequestRejected, action)
			assert.Error(t, err, "action %s should not apply to a rejected request", action)
		}
	})

	t.Run("fulfilled is terminal", func(t *testing.T) {
		for _, action := range []string{RequestActionApprove, RequestActionReject, RequestActionRequestRevision, RequestActionResubmit, RequestActionFulfill} {
			_, err := NextRequestStatus(RequestFulfilled, action)
			assert.Error(t, err, "action %s should not apply to a fulfilled request", action)
		}
	})

	t.Run("fulfill requires approval first", func(t *testing.T) {
		_, err := NextRequestStatus(RequestSubmitted, RequestActionFulfill)
		assert.Error(t, err)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := NextRequestStatus(RequestSubmitted, "escalate")
		assert.Error(t, err)
	})
}

func TestRequestEditable(t *testing.T) {
	assert.True(t, RequestEditable(RequestSubmitted))
	assert.True(t, RequestEditable(RequestNeedsRevision))
	assert.False(t, RequestEditable(RequestApproved))
	assert.False(t, RequestEditable(RequestRejected))
	assert.False(t, RequestEditable(RequestFulfilled))
	assert.False(t, RequestEditable(RequestClosed))
}
