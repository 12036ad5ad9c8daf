// Package denormalize maps upstream payloads onto content records.
package denormalize

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"reddit_archiver/internal/domain"
)

type thingData struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Subreddit   string   `json:"subreddit"`
	Title       string   `json:"title"`
	Selftext    string   `json:"selftext"`
	Body        string   `json:"body"`
	URL         string   `json:"url"`
	Permalink   string   `json:"permalink"`
	Score       int      `json:"score"`
	Archived    bool     `json:"archived"`
	CreatedUTC  *float64 `json:"created_utc"`
	LinkID      string   `json:"link_id"`
	IsSelf      bool     `json:"is_self"`
	DisplayName string   `json:"display_name"`
	PublicDesc  string   `json:"public_description"`
}

type Denormalizer struct {
	now func() time.Time
}

func New() *Denormalizer {
	return &Denormalizer{now: time.Now}
}

// Denormalize builds a record from item. Comments need their parent link, which
// supplies the title and url.
func (d *Denormalizer) Denormalize(_ context.Context, item domain.RawItem, parent *domain.RawItem) (*domain.ContentRecord, error) {
	id, err := item.ExternalID()
	if err != nil {
		return nil, &domain.DenormalizationError{Reason: err.Error()}
	}

	var data thingData
	if err := json.Unmarshal(item.Data, &data); err != nil {
		return nil, &domain.DenormalizationError{ExternalID: id.String(), Reason: "decode payload: " + err.Error()}
	}
	if data.CreatedUTC == nil {
		return nil, &domain.DenormalizationError{ExternalID: id.String(), Reason: "missing created_utc"}
	}

	rec := &domain.ContentRecord{
		ExternalID: id,
		Kind:       id.Kind,
		Author:     data.Author,
		Subreddit:  data.Subreddit,
		Permalink:  data.Permalink,
		Score:      data.Score,
		RawBody:    item.Marshal(),
		IsArchived: data.Archived,
		CreatedAt:  fromUnix(*data.CreatedUTC),
		SyncedAt:   d.now().UTC(),
	}

	switch id.Kind {
	case domain.KindLink:
		if data.Title == "" {
			return nil, &domain.DenormalizationError{ExternalID: id.String(), Reason: "link without title"}
		}
		rec.Title = data.Title
		if data.Selftext != "" {
			rec.Body = &data.Selftext
		}
		if data.URL != "" && !data.IsSelf {
			rec.URL = &data.URL
		}
	case domain.KindComment:
		if err := d.applyParent(rec, data, parent); err != nil {
			return nil, err
		}
		rec.Body = &data.Body
	case domain.KindSubreddit:
		rec.Title = data.DisplayName
		rec.Subreddit = data.DisplayName
		if data.PublicDesc != "" {
			rec.Body = &data.PublicDesc
		}
	case domain.KindAccount, domain.KindMessage, domain.KindAward, domain.KindMore:
		return nil, &domain.DenormalizationError{ExternalID: id.String(), Reason: fmt.Sprintf("unsupported kind %s", id.Kind)}
	default:
		return nil, &domain.DenormalizationError{ExternalID: id.String(), Reason: fmt.Sprintf("unknown kind %q", id.Kind)}
	}

	return rec, nil
}

func (d *Denormalizer) applyParent(rec *domain.ContentRecord, data thingData, parent *domain.RawItem) error {
	if parent == nil {
		return &domain.DenormalizationError{ExternalID: rec.ExternalID.String(), Reason: "comment without parent link"}
	}

	parentID, err := parent.ExternalID()
	if err != nil || parentID.Kind != domain.KindLink {
		return &domain.DenormalizationError{ExternalID: rec.ExternalID.String(), Reason: "parent is not a link"}
	}
	if data.LinkID != "" && data.LinkID != parentID.String() {
		return &domain.DenormalizationError{
			ExternalID: rec.ExternalID.String(),
			Reason:     fmt.Sprintf("parent %s does not match link_id %s", parentID, data.LinkID),
		}
	}

	var link thingData
	if err := json.Unmarshal(parent.Data, &link); err != nil {
		return &domain.DenormalizationError{ExternalID: rec.ExternalID.String(), Reason: "decode parent: " + err.Error()}
	}

	rec.ParentExternalID = &parentID
	rec.Title = link.Title
	if link.URL != "" {
		rec.URL = &link.URL
	}
	if rec.Subreddit == "" {
		rec.Subreddit = link.Subreddit
	}
	return nil
}

func fromUnix(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
