package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDArrayValue(t *testing.T) {
	tests := []struct {
		name string
		in   IDArray
		want string
	}{
		{name: "empty", in: IDArray{}, want: "{}"},
		{name: "nil", in: nil, want: "{}"},
		{name: "single", in: IDArray{7}, want: "{7}"},
		{name: "multiple", in: IDArray{1, 2, 30}, want: "{1,2,30}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.in.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestIDArrayScan(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    IDArray
		wantErr bool
	}{
		{name: "null column", in: nil, want: nil},
		{name: "empty literal", in: "{}", want: IDArray{}},
		{name: "string literal", in: "{1,2,30}", want: IDArray{1, 2, 30}},
		{name: "bytes literal", in: []byte("{5}"), want: IDArray{5}},
		{name: "spaces tolerated", in: "{1, 2}", want: IDArray{1, 2}},
		{name: "garbage element", in: "{1,x}", wantErr: true},
		{name: "unsupported type", in: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a IDArray
			err := a.Scan(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestIDArrayRoundTrip(t *testing.T) {
	orig := IDArray{3, 14, 159}
	v, err := orig.Value()
	require.NoError(t, err)

	var back IDArray
	require.NoError(t, back.Scan(v))
	assert.Equal(t, orig, back)
}

func TestIDArrayContains(t *testing.T) {
	a := IDArray{1, 2, 3}
	assert.True(t, a.Contains(2))
	assert.False(t, a.Contains(4))
	assert.False(t, IDArray(nil).Contains(1))
}

func TestEffectiveTenants(t *testing.T) {
	t.Run("set wins over scalar", func(t *testing.T) {
		u := User{TenantID: 1, TenantIDs: IDArray{2, 3}}
		assert.Equal(t, []uint{2, 3}, u.EffectiveTenants())
	})

	t.Run("scalar fallback", func(t *testing.T) {
		u := User{TenantID: 7}
		assert.Equal(t, []uint{7}, u.EffectiveTenants())
	})

	t.Run("no tenant at all", func(t *testing.T) {
		u := User{}
		assert.Nil(t, u.EffectiveTenants())
	})
}
