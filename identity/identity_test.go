package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, FromRequestCtx(r))

	u := NewUser()
	u.SetUserName("dummy")
	u.SetDomain("REALM")
	r = AddToRequestCtx(u, r)

	id := FromRequestCtx(r)
	require.NotNil(t, id)
	assert.Equal(t, "dummy", id.UserName())
	assert.Equal(t, "REALM", id.Domain())
	assert.Equal(t, u.SessionId(), id.SessionId())
}

func TestUser(t *testing.T) {
	u := NewUser()
	_, err := uuid.Parse(u.SessionId())
	assert.NoError(t, err)
	assert.NotEqual(t, u.SessionId(), NewUser().SessionId())

	u.SetUserName("dummy")
	assert.Equal(t, "dummy", u.String())
	u.SetDomain("REALM")
	assert.Equal(t, "REALM\\dummy", u.String())

	u.SetAttribute(AttrRemoteAddr, "10.0.0.1:1234")
	assert.Equal(t, "10.0.0.1:1234", u.GetAttribute(AttrRemoteAddr))
	u.DelAttribute(AttrRemoteAddr)
	assert.Nil(t, u.GetAttribute(AttrRemoteAddr))
	assert.Empty(t, u.Attributes())
}
