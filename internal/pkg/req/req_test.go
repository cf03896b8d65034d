package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/pkg/errs"
)

func post(contentType, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	r.Header.Set("Content-Type", contentType)
	return r
}

func TestFormValuesFromURLEncodedForm(t *testing.T) {
	r := post("application/x-www-form-urlencoded", "email=demo%40skillswap.dev&password=demo123+&ignored=1")

	values, customErr := FormValues(httptest.NewRecorder(), r, "email", "password", "missing")
	require.Nil(t, customErr)
	assert.Equal(t, map[string]string{
		"email":    "demo@skillswap.dev",
		"password": "demo123 ",
		"missing":  "",
	}, values)
}

func TestFormValuesFromJSON(t *testing.T) {
	r := post("application/json", `{"q":" , ,Node.js,"}`)

	values, customErr := FormValues(httptest.NewRecorder(), r, "q")
	require.Nil(t, customErr)
	assert.Equal(t, " , ,Node.js,", values["q"])
}

func TestFormValuesRejectsBadJSON(t *testing.T) {
	_, customErr := FormValues(httptest.NewRecorder(), post("application/json", `{"q":1}`), "q")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrInvalidJSONFormat, customErr.Code)
}

func TestBindJSON(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}

	require.Nil(t, BindJSON(post("application/json; charset=utf-8", `{"text":"hi"}`), &dst))
	assert.Equal(t, "hi", dst.Text)

	customErr := BindJSON(post("text/plain", `{"text":"hi"}`), &dst)
	assert.Equal(t, errs.ErrUnsupportedMediaType, customErr.Code)

	customErr = BindJSON(post("application/json", `{"text":"hi","other":1}`), &dst)
	assert.Equal(t, errs.ErrInvalidJSONFormat, customErr.Code)

	customErr = BindJSON(post("application/json", `{"text":"a"}{"text":"b"}`), &dst)
	assert.Equal(t, errs.ErrExtraContentInBody, customErr.Code)
}
