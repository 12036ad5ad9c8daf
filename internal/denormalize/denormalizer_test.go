package denormalize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit_archiver/internal/domain"
)

var (
	linkItem = domain.RawItem{Kind: domain.KindLink, Data: []byte(`{
		"id":"abc","name":"t3_abc","author":"alice","subreddit":"golang","title":"Generics",
		"url":"https://go.dev/blog","permalink":"/r/golang/comments/abc/generics/","score":42,
		"archived":false,"created_utc":1700000000.0,"is_self":false}`)}

	commentItem = domain.RawItem{Kind: domain.KindComment, Data: []byte(`{
		"id":"c1","name":"t1_c1","author":"bob","body":"nice","link_id":"t3_abc",
		"permalink":"/r/golang/comments/abc/generics/c1/","score":3,"archived":true,"created_utc":1700000100}`)}
)

func TestDenormalize_Link(t *testing.T) {
	rec, err := New().Denormalize(context.Background(), linkItem, nil)
	require.NoError(t, err)

	assert.Equal(t, "t3_abc", rec.ExternalID.String())
	assert.Equal(t, domain.KindLink, rec.Kind)
	assert.Equal(t, "Generics", rec.Title)
	assert.Equal(t, "golang", rec.Subreddit)
	require.NotNil(t, rec.URL)
	assert.Equal(t, "https://go.dev/blog", *rec.URL)
	assert.Equal(t, 42, rec.Score)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), rec.CreatedAt)
	assert.Nil(t, rec.ParentExternalID)
	assert.Nil(t, rec.NextSyncAt)
	assert.JSONEq(t, string(linkItem.Marshal()), string(rec.RawBody))
}

func TestDenormalize_CommentUsesParent(t *testing.T) {
	rec, err := New().Denormalize(context.Background(), commentItem, &linkItem)
	require.NoError(t, err)

	assert.Equal(t, "t1_c1", rec.ExternalID.String())
	assert.Equal(t, "Generics", rec.Title)
	assert.Equal(t, "golang", rec.Subreddit)
	require.NotNil(t, rec.ParentExternalID)
	assert.Equal(t, "t3_abc", rec.ParentExternalID.String())
	require.NotNil(t, rec.Body)
	assert.Equal(t, "nice", *rec.Body)
	assert.True(t, rec.IsArchived)
}

func TestDenormalize_Errors(t *testing.T) {
	otherLink := domain.RawItem{Kind: domain.KindLink, Data: []byte(`{"id":"zzz","title":"x","created_utc":1}`)}

	tests := []struct {
		name   string
		item   domain.RawItem
		parent *domain.RawItem
		reason string
	}{
		{name: "comment without parent", item: commentItem, reason: "without parent"},
		{name: "mismatched parent", item: commentItem, parent: &otherLink, reason: "does not match"},
		{name: "missing created", item: domain.RawItem{Kind: domain.KindLink, Data: []byte(`{"id":"a","title":"t"}`)}, reason: "created_utc"},
		{name: "link without title", item: domain.RawItem{Kind: domain.KindLink, Data: []byte(`{"id":"a","created_utc":1}`)}, reason: "title"},
		{name: "unsupported kind", item: domain.RawItem{Kind: domain.KindMessage, Data: []byte(`{"id":"m","created_utc":1}`)}, reason: "unsupported"},
		{name: "placeholder", item: domain.RawItem{Kind: domain.KindMore, Data: []byte(`{"id":"m"}`)}, reason: "placeholder"},
		{name: "bad payload", item: domain.RawItem{Kind: domain.KindLink, Data: []byte(`{"id":"a","name":"t3_a","score":"lots"}`)}, reason: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Denormalize(context.Background(), tt.item, tt.parent)
			var de *domain.DenormalizationError
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Reason, tt.reason)
		})
	}
}

func TestDenormalize_Subreddit(t *testing.T) {
	item := domain.RawItem{Kind: domain.KindSubreddit, Data: []byte(`{"id":"2qh1i","name":"t5_2qh1i","display_name":"golang","public_description":"Go","created_utc":1200000000}`)}

	rec, err := New().Denormalize(context.Background(), item, nil)
	require.NoError(t, err)
	assert.Equal(t, "golang", rec.Title)
	require.NotNil(t, rec.Body)
	assert.Equal(t, "Go", *rec.Body)
}
