package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	cause := errors.New("service unavailable")
	err := fmt.Errorf("tick: %w", &FetchError{StatusCode: 503, Err: cause})

	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "status 503")

	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, 503, fe.StatusCode)
}

func TestFetchError_Transport(t *testing.T) {
	err := &FetchError{Err: errors.New("dial tcp: timeout")}
	assert.Equal(t, "feed fetch failed: dial tcp: timeout", err.Error())
	assert.NotErrorIs(t, err, ErrParse)
}
