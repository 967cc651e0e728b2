package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMergeCartLine(t *testing.T) {
	soap := primitive.NewObjectID()
	lotion := primitive.NewObjectID()

	lines := MergeCartLine(nil, CartLine{ProductID: soap, Quantity: 2})
	require.Len(t, lines, 1)

	lines = MergeCartLine(lines, CartLine{ProductID: lotion, Quantity: 1})
	require.Len(t, lines, 2)

	// same product merges quantities instead of appending
	lines = MergeCartLine(lines, CartLine{ProductID: soap, Quantity: 3})
	require.Len(t, lines, 2)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestRemoveCartLine(t *testing.T) {
	soap := primitive.NewObjectID()
	lotion := primitive.NewObjectID()
	lines := []CartLine{
		{ProductID: soap, Quantity: 2},
		{ProductID: lotion, Quantity: 1},
	}

	lines = RemoveCartLine(lines, soap)
	require.Len(t, lines, 1)
	assert.Equal(t, lotion, lines[0].ProductID)

	lines = RemoveCartLine(lines, primitive.NewObjectID())
	assert.Len(t, lines, 1)
}

func TestCartLineJSONFormat(t *testing.T) {
	id := primitive.NewObjectID()
	raw, err := json.Marshal([]CartLine{{ProductID: id, Quantity: 2}})
	require.NoError(t, err)

	var decoded []CartLine
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, id, decoded[0].ProductID)
	assert.Equal(t, 2, decoded[0].Quantity)
}
