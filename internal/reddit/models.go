package reddit

import (
	"encoding/json"

	"reddit_archiver/internal/domain"
)

// Listing is the paginated envelope returned by listing and info endpoints.
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

type ListingData struct {
	After    *string          `json:"after"`
	Before   *string          `json:"before"`
	Dist     int              `json:"dist"`
	Children []domain.RawItem `json:"children"`
}

// MoreChildrenResponse is returned by /api/morechildren with api_type=json.
type MoreChildrenResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []domain.RawItem `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// threadResponse is the two element array returned by /comments/{id}.
type threadResponse []Listing

func decodeListing(body []byte) (*Listing, error) {
	var l Listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
