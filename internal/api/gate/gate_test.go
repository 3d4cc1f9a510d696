package gate

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/standup-backend/internal/apperr"
)

func newGateRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(secret))
	r.POST("/probe", func(c *gin.Context) {
		args := FromContext(c)
		v, _ := args.Optional("key")
		c.JSON(200, gin.H{"key": v})
	})
	return r
}

func TestMiddlewareSecret(t *testing.T) {
	r := newGateRouter("s3cret")

	t.Run("secret in body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(`{"BACKEND_SECRET":"s3cret","key":"v"}`))
		r.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"key":"v"`)
	})

	t.Run("secret in header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(`{}`))
		req.Header.Set("X-BACKEND-SECRET", "s3cret")
		r.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)
	})

	t.Run("form-encoded secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader("BACKEND_SECRET=s3cret&key=v"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"key":"v"`)
	})

	t.Run("multipart secret", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("BACKEND_SECRET", "s3cret"))
		require.NoError(t, mw.WriteField("key", "v"))
		require.NoError(t, mw.Close())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/probe", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		r.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"key":"v"`)
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(`{"BACKEND_SECRET":"nope"}`))
		r.ServeHTTP(w, req)
		// HTTP 403，envelope 内 status 500
		assert.Equal(t, 403, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"BAD_SECRET_RESPONSE"`)
		assert.Contains(t, w.Body.String(), `"status":500`)
	})

	t.Run("missing secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(`{}`))
		r.ServeHTTP(w, req)
		assert.Equal(t, 403, w.Code)
	})

	t.Run("undecodable body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(`{not json`))
		r.ServeHTTP(w, req)
		assert.Equal(t, 400, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"BAD_ENCODE"`)
	})
}

func TestArgsGetters(t *testing.T) {
	t.Run("string coercion", func(t *testing.T) {
		args := Args{"s": "v", "n": float64(42), "b": true}
		v, err := args.String("s")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
		v, ok := args.Optional("n")
		assert.True(t, ok)
		assert.Equal(t, "42", v)
		v, ok = args.Optional("b")
		assert.True(t, ok)
		assert.Equal(t, "true", v)
	})

	t.Run("missing required", func(t *testing.T) {
		args := Args{"empty": ""}
		_, err := args.String("absent")
		assert.ErrorIs(t, err, apperr.MissingArg)
		_, err = args.String("empty")
		assert.ErrorIs(t, err, apperr.MissingArg)
	})

	t.Run("bool parsing", func(t *testing.T) {
		args := Args{"b1": true, "b2": "True", "b3": "banana", "b4": float64(1)}
		b, err := args.OptionalBool("b1")
		require.NoError(t, err)
		assert.True(t, *b)
		b, err = args.OptionalBool("b2")
		require.NoError(t, err)
		assert.True(t, *b)
		_, err = args.OptionalBool("b3")
		assert.ErrorIs(t, err, apperr.InvalidArg)
		_, err = args.OptionalBool("b4")
		assert.ErrorIs(t, err, apperr.InvalidArg)
		b, err = args.OptionalBool("absent")
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("uint parsing", func(t *testing.T) {
		args := Args{"id": float64(7), "neg": "-3", "word": "seven"}
		id, err := args.Uint("id")
		require.NoError(t, err)
		assert.EqualValues(t, 7, id)
		_, err = args.Uint("neg")
		assert.ErrorIs(t, err, apperr.InvalidArg)
		_, err = args.Uint("word")
		assert.ErrorIs(t, err, apperr.InvalidArg)
		_, err = args.Uint("absent")
		assert.ErrorIs(t, err, apperr.MissingArg)
	})
}
