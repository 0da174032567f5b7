package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "datagraph-backend/pkg/errors"
)

type sample struct {
	Name string            `json:"name" validate:"notblank,max=10"`
	Tags map[string]string `json:"tags" validate:"omitempty,dive,keys,tagkey,endkeys"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(sample{Name: "cats", Tags: map[string]string{"species": "felis"}}))
	})

	t.Run("blank name uses the json field name", func(t *testing.T) {
		err := ValidateStruct(sample{Name: "   "})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("too long", func(t *testing.T) {
		err := ValidateStruct(sample{Name: "a very long name"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name must be at most 10 characters")
	})

	t.Run("reserved tag key", func(t *testing.T) {
		err := ValidateStruct(sample{Name: "cats", Tags: map[string]string{"url": "x"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tag key 'url' is not allowed")
	})

	t.Run("malformed tag key", func(t *testing.T) {
		err := ValidateStruct(sample{Name: "cats", Tags: map[string]string{"bad key": "x"}})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})
}
