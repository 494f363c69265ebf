package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindPredicates(t *testing.T) {
	cases := []struct {
		err    error
		config bool
		auth   bool
		remote bool
		data   bool
	}{
		{ConfigError("load", "missing %v", "client_id"), true, false, false, false},
		{AuthError("acquire", fmt.Errorf("expired")), false, true, false, false},
		{RemoteServiceError("get-sheet", fmt.Errorf("404")), false, false, true, false},
		{DataError("currency", "invalid amount %q", "abc"), false, false, false, true},
		{fmt.Errorf("plain"), false, false, false, false},
		{nil, false, false, false, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.config, IsConfig(c.err), "IsConfig(%v)", c.err)
		assert.Equal(t, c.auth, IsAuth(c.err), "IsAuth(%v)", c.err)
		assert.Equal(t, c.remote, IsRemote(c.err), "IsRemote(%v)", c.err)
		assert.Equal(t, c.data, IsData(c.err), "IsData(%v)", c.err)
	}
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := fmt.Errorf("clearing actions sheet (%w)", RemoteServiceError("delete-rows", cause))

	assert.True(t, IsRemote(err))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, &Error{Kind: KindRemote}))
	assert.False(t, errors.Is(err, &Error{Kind: KindAuth}))
}

func TestRemoteServiceErrorIsNotDoubleWrapped(t *testing.T) {
	inner := RemoteServiceError("add-rows", fmt.Errorf("429"))
	outer := RemoteServiceError("append", inner)

	require.Same(t, inner, outer)

	wrapped := fmt.Errorf("error adding rows 1-200 of 450 (%w)", inner)
	require.Same(t, wrapped, RemoteServiceError("append", wrapped))
}

func TestRemoteServiceErrorKeepsClassifiedCause(t *testing.T) {
	expired := AuthError("get-sheet", fmt.Errorf(`oauth2: "invalid_grant"`))
	err := RemoteServiceError("clear", expired)

	assert.True(t, IsRemote(err))
	assert.True(t, IsAuth(err))
	assert.False(t, IsConfig(err))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindRemote, e.Kind)

	config := RemoteServiceError("get-sheet", ConfigError("sheet-id", "invalid sheet ID"))
	assert.True(t, IsRemote(config))
	assert.True(t, IsConfig(config))
}

func TestErrorMessage(t *testing.T) {
	err := ConfigError("config", "missing sheet id for %q", "actions")

	assert.Equal(t, `config: missing sheet id for "actions"`, err.Error())
	assert.Equal(t, "AUTHENTICATION", (&Error{Kind: KindAuth}).Error())
}
