package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExternalID(t *testing.T) {
	tests := []struct {
		in      string
		want    ExternalID
		wantErr bool
	}{
		{in: "t3_abc", want: ExternalID{Kind: KindLink, LocalID: "abc"}},
		{in: "t1_x9z", want: ExternalID{Kind: KindComment, LocalID: "x9z"}},
		{in: "t5_2qh1i", want: ExternalID{Kind: KindSubreddit, LocalID: "2qh1i"}},
		{in: "t3_", wantErr: true},
		{in: "_abc", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "t9_abc", wantErr: true},
		{in: "more_abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExternalID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidExternalID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestExternalID_JSON(t *testing.T) {
	type wrapper struct {
		ID ExternalID `json:"id"`
	}

	b, err := json.Marshal(wrapper{ID: NewExternalID(KindLink, "abc")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t3_abc"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1_def"}`), &w))
	assert.Equal(t, NewExternalID(KindComment, "def"), w.ID)
}

func TestResolveGroups(t *testing.T) {
	groups, err := ResolveGroups("all")
	require.NoError(t, err)
	assert.Equal(t, AllGroups(), groups)

	groups, err = ResolveGroups("saved")
	require.NoError(t, err)
	assert.Equal(t, []SourceGroup{GroupSaved}, groups)

	_, err = ResolveGroups("bookmarks")
	assert.ErrorIs(t, err, ErrInvalidGroup)
}
