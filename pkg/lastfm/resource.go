package lastfm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ResourceService looks up Last.fm resources by name on the web site.
//
// This is not part of the 2.0 API; it uses the ajax endpoint the web
// player relies on to turn an artist name into its numeric id, which is
// what multi-artist stations are addressed by.
type ResourceService struct {
	client *Client
}

// Lookup resolves a resource of the given type by name.
//
// A name Last.fm does not know yields a Resource with a zero ID and no
// error.
func (r *ResourceService) Lookup(ctx context.Context, resourceType, name string) (*Resource, error) {
	if resourceType == "" || name == "" {
		return nil, fmt.Errorf("lastfm: resource type and name are required")
	}

	q := url.Values{}
	q.Set("type", resourceType)
	q.Set("name", name)

	body, err := r.client.get(ctx, "ajax/getResource", q)
	if err != nil {
		return nil, err
	}

	var resp resourceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse resource response: %w", err)
	}

	res := &Resource{Type: resourceType, Name: name}
	if resp.Resource != nil {
		res.ID = int64(resp.Resource.ID)
		if resp.Resource.Name != "" {
			res.Name = resp.Resource.Name
		}
		if resp.Resource.Type != "" {
			res.Type = resp.Resource.Type
		}
	}

	return res, nil
}

// LookupArtist returns the numeric id of the named artist, or zero.
func (r *ResourceService) LookupArtist(ctx context.Context, name string) (int64, error) {
	res, err := r.Lookup(ctx, "artist", name)
	if err != nil {
		return 0, err
	}
	return res.ID, nil
}

type resourceResponse struct {
	Resource *struct {
		ID   looseInt `json:"id"`
		Type string   `json:"type"`
		Name string   `json:"name"`
	} `json:"resource"`
}

// looseInt accepts both 42 and "42".
type looseInt int64

func (i *looseInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*i = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*i = looseInt(n)
	return nil
}
