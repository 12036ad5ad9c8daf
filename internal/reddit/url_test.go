package reddit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		link    string
		comment string
		wantErr bool
	}{
		{name: "permalink", in: "https://www.reddit.com/r/golang/comments/abc123/some_title/", link: "t3_abc123"},
		{name: "permalink without slug", in: "https://reddit.com/comments/abc123", link: "t3_abc123"},
		{name: "old reddit", in: "https://old.reddit.com/r/golang/comments/abc123/title", link: "t3_abc123"},
		{name: "comment permalink", in: "https://www.reddit.com/r/golang/comments/abc123/title/def456/", link: "t3_abc123", comment: "t1_def456"},
		{name: "new comment permalink", in: "https://www.reddit.com/r/golang/comments/abc123/comment/def456/", link: "t3_abc123", comment: "t1_def456"},
		{name: "short link", in: "https://redd.it/abc123", link: "t3_abc123"},
		{name: "fullname", in: "t3_abc123", link: "t3_abc123"},
		{name: "comment fullname", in: "t1_def456", wantErr: true},
		{name: "other host", in: "https://example.com/r/golang/comments/abc123", wantErr: true},
		{name: "subreddit only", in: "https://www.reddit.com/r/golang/", wantErr: true},
		{name: "garbage", in: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.link, got.Link.String())
			if tt.comment == "" {
				assert.Nil(t, got.Comment)
			} else {
				require.NotNil(t, got.Comment)
				assert.Equal(t, tt.comment, got.Comment.String())
			}
		})
	}
}
