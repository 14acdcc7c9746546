package errors

import (
	stderrors "errors"
	"github.com/stretchr/testify/assert"
	"net/http"
	"testing"
)

func TestWrapKeepsAPIError(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "OTHER", "other", http.StatusTeapot)
	assert.Same(t, ErrNotFound, wrapped)
}

func TestWrapCarriesDetails(t *testing.T) {
	wrapped := Wrap(stderrors.New("dial tcp: refused"), "UPSTREAM", "fetch failed", http.StatusBadGateway)
	assert.Equal(t, "UPSTREAM", wrapped.Code)
	assert.Equal(t, http.StatusBadGateway, wrapped.Status)
	assert.Equal(t, "dial tcp: refused", wrapped.Details)
	assert.Equal(t, "UPSTREAM: fetch failed", wrapped.Error())
}
