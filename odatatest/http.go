package odatatest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

type HTTPTestCase struct {
	Request  HTTPTestCaseRequest
	Expected HTTPTestCaseResponse
}

type HTTPTestCaseRequest struct {
	Method string
	Path   string
	// RawQuery is appended untouched, use it for query strings that
	// url.Values would re-encode.
	RawQuery string
	Query    url.Values
	Body     any
	Headers  http.Header
}

func (testCase HTTPTestCaseRequest) BuildRequest(t *testing.T) *http.Request {
	t.Helper()

	var body io.Reader
	if testCase.Body != nil {
		bodyBytes, err := json.Marshal(testCase.Body)
		assert.NilError(t, err)
		body = bytes.NewBuffer(bodyBytes)
	}

	method := testCase.Method
	if method == "" {
		method = http.MethodGet
	}

	requestURL := testCase.Path
	switch {
	case testCase.RawQuery != "":
		requestURL += "?" + testCase.RawQuery
	case len(testCase.Query) > 0:
		requestURL += "?" + testCase.Query.Encode()
	}

	request := httptest.NewRequest(method, requestURL, body)
	for key, values := range testCase.Headers {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	return request
}

type HTTPTestCaseResponse struct {
	Status  int
	Headers http.Header
	// Body is compared verbatim when it is a string, otherwise it is
	// marshalled to JSON first.
	Body any
}

func TestRequest(t *testing.T, handler http.Handler, testCase HTTPTestCase) {
	t.Helper()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, testCase.Request.BuildRequest(t))

	assert.Equal(t, testCase.Expected.Status, recorder.Code)

	for key := range testCase.Expected.Headers {
		assert.Equal(t, testCase.Expected.Headers.Get(key), recorder.Header().Get(key), "header %s", key)
	}

	if testCase.Expected.Body == nil {
		return
	}

	expectedBody := ""
	switch typedBody := testCase.Expected.Body.(type) {
	case string:
		expectedBody = typedBody
	default:
		jsonBytes, err := json.Marshal(typedBody)
		assert.NilError(t, err)
		expectedBody = string(jsonBytes)
	}

	assert.Equal(t, expectedBody, strings.TrimSpace(recorder.Body.String()))
}
