package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusClosed(t *testing.T) {
	testCases := []struct {
		status RequestStatus
		closed bool
	}{
		{StatusInProcess, false},
		{StatusAccepted, false},
		{StatusRejected, true},
		{StatusFinished, true},
		{StatusCanceled, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.closed, tc.status.Closed())
		})
	}
}

func TestRequestStatusValid(t *testing.T) {
	for _, s := range []RequestStatus{
		StatusInProcess, StatusAccepted, StatusRejected, StatusFinished, StatusCanceled,
	} {
		assert.True(t, s.Valid(), "%s must be valid", s)
	}

	assert.False(t, RequestStatus("archived").Valid())
	assert.False(t, RequestStatus("").Valid())
}
