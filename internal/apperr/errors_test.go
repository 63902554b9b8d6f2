package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound},
		{code: CodeSoldItemsProtected, status: http.StatusConflict, detailsOK: true},
		{code: CodeConflict, status: http.StatusConflict},
		{code: CodeInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		assert.Equal(t, tt.status, meta.HTTPStatus, tt.code)
		assert.Equal(t, tt.detailsOK, meta.DetailsAllowed, tt.code)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, MetadataFor("SOMETHING_ELSE").HTTPStatus)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(CodeInternal, cause, "load batch")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL_ERROR: load batch", err.Error())
}

func TestAsFindsWrappedError(t *testing.T) {
	base := NotFound("batch", 7)
	wrapped := fmt.Errorf("get batch: %w", base)

	found := As(wrapped)
	require.NotNil(t, found)
	assert.Equal(t, CodeNotFound, found.Code())
	assert.Equal(t, "batch 7 not found", found.Message())
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestSoldItemsProtectedDetails(t *testing.T) {
	err := SoldItemsProtected([]int64{4, 9})

	assert.Equal(t, CodeSoldItemsProtected, err.Code())
	assert.Equal(t, "2 item(s) already sold; resubmit with force=true to delete", err.Message())
	details, ok := err.Details().(SoldItemsDetails)
	require.True(t, ok)
	assert.Equal(t, []int64{4, 9}, details.BlockedItemIDs)
	assert.Equal(t, 2, details.Count)
}

func TestValidationOmitsEmptyFields(t *testing.T) {
	assert.Nil(t, Validation("bad input", nil).Details())
	assert.Equal(t, map[string]string{"quantity": "must be greater than 0"},
		Validation("bad input", map[string]string{"quantity": "must be greater than 0"}).Details())
}
