package handler

import (
	"context"
	"encoding/base64"
	"html"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"ask-web/internal/usecase"
)

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"content-type": "application/x-www-form-urlencoded"},
		Body:       body,
	}
}

func TestHandleLambda_Index(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{})

	resp, err := h.HandleLambda(context.Background(), makeEvent(http.MethodGet, "/", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/html; charset=utf-8", resp.Headers["Content-Type"])
	require.Contains(t, resp.Body, `name="question"`)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestHandleLambda_Ask(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Answer: "4"}}
	h := newTestHandler(t, uc)

	resp, err := h.HandleLambda(context.Background(), makeEvent(http.MethodPost, "/ask", "question=2%2B2%3F"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2+2?", uc.in.Question)
	require.Contains(t, html.UnescapeString(resp.Body), `<p class="answer">4</p>`)
}

func TestHandleLambda_Base64Body(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Answer: "4"}}
	h := newTestHandler(t, uc)

	event := makeEvent(http.MethodPost, "/ask", base64.StdEncoding.EncodeToString([]byte("question=2%2B2%3F")))
	event.IsBase64Encoded = true
	resp, err := h.HandleLambda(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2+2?", uc.in.Question)
}

func TestHandleLambda_InvalidBase64(t *testing.T) {
	uc := &stubUseCase{}
	h := newTestHandler(t, uc)

	event := makeEvent(http.MethodPost, "/ask", "%%%not-base64")
	event.IsBase64Encoded = true
	resp, err := h.HandleLambda(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, uc.called)
}

func TestHandleLambda_UpstreamError(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "completion_error"}})

	resp, err := h.HandleLambda(context.Background(), makeEvent(http.MethodPost, "/ask", "question=hi"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHandleLambda_MultiValueHeadersAndCorrelation(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{})

	event := makeEvent(http.MethodGet, "/health", "")
	event.MultiValueHeaders = map[string][]string{"X-Correlation-Id": {"corr-123"}}
	event.QueryStringParameters = map[string]string{"verbose": "1"}
	resp, err := h.HandleLambda(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
	require.Equal(t, []string{"corr-123"}, resp.MultiValueHeaders["X-Correlation-Id"])
}

func TestRequestFromEvent_Query(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:                      http.MethodGet,
		Path:                            "/",
		QueryStringParameters:           map[string]string{"a": "1", "b": "2"},
		MultiValueQueryStringParameters: map[string][]string{"a": {"1", "3"}},
	}
	req, err := requestFromEvent(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, req.URL.Query()["a"])
	require.Equal(t, "2", req.URL.Query().Get("b"))
}

func TestRequestFromEvent_EmptyPath(t *testing.T) {
	req, err := requestFromEvent(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	require.Equal(t, "/", req.URL.Path)
}
