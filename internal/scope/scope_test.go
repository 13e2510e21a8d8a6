package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lousuarez/LourenTask/internal/model"
)

func TestTenants(t *testing.T) {
	t.Run("membership set takes precedence", func(t *testing.T) {
		u := &model.User{TenantID: 1, TenantIDs: model.IDArray{4, 5}}
		assert.Equal(t, []uint{4, 5}, Tenants(u))
	})

	t.Run("legacy scalar only", func(t *testing.T) {
		u := &model.User{TenantID: 9}
		assert.Equal(t, []uint{9}, Tenants(u))
	})
}

func TestAllowed(t *testing.T) {
	ids := []uint{1, 3}
	assert.True(t, Allowed(ids, 3))
	assert.False(t, Allowed(ids, 2))
	assert.False(t, Allowed(nil, 1))
}
