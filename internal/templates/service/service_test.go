package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

func TestList_BuiltinsInOrderWithoutBodies(t *testing.T) {
	s := New(Builtin())
	list := s.List(context.Background())
	require.Len(t, list, 4)

	var ids []string
	for _, tpl := range list {
		ids = append(ids, tpl.ID)
		assert.Empty(t, tpl.Body)
		assert.NotEmpty(t, tpl.Subject)
	}
	assert.Equal(t, []string{"comeback", "thankyou", "special_offer", "feedback"}, ids)
}

func TestRender(t *testing.T) {
	s := New(Builtin())
	ctx := context.Background()

	msg, err := s.Render(ctx, "thankyou", domain.Recipient{
		Email:         " ann@example.com ",
		FirstName:     "Ann",
		CustomerSince: "2021-03-14T09:26:53Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "Thank You for Being With Us, Ann!", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Ann,")
	assert.Contains(t, msg.Body, "loyal customer since March 2021.")
	assert.NotContains(t, msg.Body, "{")
}

func TestRender_Fallbacks(t *testing.T) {
	s := New(Builtin())
	msg, err := s.Render(context.Background(), "thankyou", domain.Recipient{CustomerSince: "last spring"})
	require.NoError(t, err)
	assert.Equal(t, "Thank You for Being With Us, Valued Customer!", msg.Subject)
	assert.Contains(t, msg.Body, "since N/A.")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := New(Builtin()).Render(context.Background(), "nope", domain.Recipient{})
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestNew_DuplicateReplacesInPlace(t *testing.T) {
	s := New([]domain.Template{
		{ID: "a", Subject: "first"},
		{ID: "b", Subject: "b"},
		{ID: "a", Subject: "second"},
	})
	list := s.List(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "second", list[0].Subject)
}

func TestCustomerSince(t *testing.T) {
	assert.Equal(t, "January 2024", CustomerSince("2024-01-31"))
	assert.Equal(t, "December 2023", CustomerSince("2023-12-01T10:00:00"))
	assert.Equal(t, "N/A", CustomerSince(""))
	assert.Equal(t, "N/A", CustomerSince("yesterday"))
}
