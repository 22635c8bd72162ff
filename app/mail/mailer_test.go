package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailer_Send(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer server.Close()

	mailer, err := NewResendMailer("re_test", "news@example.com").WithBaseURL(server.URL)
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{
		To:          []string{"a@example.com", "b@example.com"},
		Subject:     "Weekly",
		HTML:        "<p>attached</p>",
		Attachments: []Attachment{{Filename: "weekly.pdf", Content: []byte("%PDF")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "news@example.com", body["from"])
	assert.Equal(t, []any{"a@example.com", "b@example.com"}, body["to"])

	attachments, ok := body["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)
	attachment := attachments[0].(map[string]any)
	assert.Equal(t, "weekly.pdf", attachment["filename"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), attachment["content"])
}

func TestResendMailer_SendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"invalid from"}`))
	}))
	defer server.Close()

	mailer, err := NewResendMailer("re_test", "bad").WithBaseURL(server.URL)
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x"})
	assert.Error(t, err)
}

func TestResendMailer_NoRecipients(t *testing.T) {
	err := NewResendMailer("re_test", "news@example.com").Send(context.Background(), Message{})
	assert.Error(t, err)
}
