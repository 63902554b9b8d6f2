package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/apperr"
)

func TestCheckRemoval(t *testing.T) {
	batch := scenarioBatch()
	batch.Items[0].Product.InStock = false // A sold
	items := batch.Items

	err := CheckRemoval(items, []int64{10}, false)
	require.Error(t, err)
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeSoldItemsProtected, typed.Code())
	details := typed.Details().(apperr.SoldItemsDetails)
	assert.Equal(t, []int64{10}, details.BlockedItemIDs)
	assert.Equal(t, 1, details.Count)

	assert.NoError(t, CheckRemoval(items, []int64{11}, false))
	assert.NoError(t, CheckRemoval(items, []int64{10}, true))
}

func TestCheckRemovalPartialDrawBlocks(t *testing.T) {
	batch := scenarioBatch()
	batch.Items[1].DrawnUnits = intPtr(1)

	err := CheckRemoval(batch.Items, []int64{10, 11, 11}, false)

	assert.Equal(t, apperr.CodeSoldItemsProtected, apperr.CodeOf(err))
	assert.Equal(t, []int64{11}, SoldAmong(batch.Items, []int64{10, 11}))
}

func TestCheckRemovalUnknownItem(t *testing.T) {
	err := CheckRemoval(scenarioBatch().Items, []int64{42}, true)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	err = CheckRemoval(scenarioBatch().Items, nil, false)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}
