package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

func TestBrevo_SendsDraftToReviewer(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	settings := mockSettings{vals: map[string]string{sdomain.KeyBrevoAPIKey: "xkeysib-override"}}
	b := NewBrevo(settings, config.Config{BrevoAPIKey: "from-env", BrevoSender: "noreply@shop.example"}, client)

	httpmock.RegisterResponder(http.MethodPost, brevoSendURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "xkeysib-override", req.Header.Get("api-key"))
		raw, _ := io.ReadAll(req.Body)
		var payload brevoEmail
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "boss@shop.example", payload.To[0]["email"])
		assert.Equal(t, "noreply@shop.example", payload.Sender["email"])
		assert.Equal(t, "[Draft for ann@example.com] Hello", payload.Subject)
		assert.Equal(t, "Body", payload.TextContent)
		return httpmock.NewJsonResponderOrPanic(201, map[string]string{"messageId": "<abc@smtp-relay>"})(req)
	})

	require.NoError(t, b.Check(context.Background()))
	id, err := b.Create(context.Background(), ddomain.Draft{To: "ann@example.com", Subject: "Hello", Body: "Body", Reviewer: "boss@shop.example"})
	require.NoError(t, err)
	assert.Equal(t, "<abc@smtp-relay>", id)
}

func TestBrevo_NotConfiguredAndFailures(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	b := NewBrevo(mockSettings{}, config.Config{}, client)
	assert.Error(t, b.Check(context.Background()))
	_, err := b.Create(context.Background(), ddomain.Draft{})
	assert.Error(t, err)

	b = NewBrevo(mockSettings{}, config.Config{BrevoAPIKey: "k", BrevoSender: "s@x.io"}, client)
	httpmock.RegisterResponder(http.MethodPost, brevoSendURL, httpmock.NewStringResponder(401, `{"code":"unauthorized"}`))
	_, err = b.Create(context.Background(), ddomain.Draft{To: "a@b.com", Reviewer: "r@b.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
