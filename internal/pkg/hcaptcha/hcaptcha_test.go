package hcaptcha

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyDisabledWithoutSecret(t *testing.T) {
	ok, err := (&Verifier{}).Verify(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		assert.Equal(t, "198.51.100.7", r.PostForm.Get("remoteip"))
		if r.PostForm.Get("response") == "good" {
			io.WriteString(w, `{"success":true,"hostname":"vidora.test"}`)
			return
		}
		io.WriteString(w, `{"success":false,"error-codes":["invalid-input-response"]}`)
	}))
	defer srv.Close()

	v := &Verifier{Secret: "s3cret", VerifyURL: srv.URL, Client: srv.Client()}

	ok, err := v.Verify(context.Background(), "good", "198.51.100.7")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), "bad", "198.51.100.7")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "invalid-input-response")

	ok, err = v.Verify(context.Background(), "", "198.51.100.7")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrEmptyToken)
}
