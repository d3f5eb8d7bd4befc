package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
)

const (
	DefaultLimit = 12
)

// ListParams selects one page of the asset listing.
type ListParams struct {
	Filters v1.Filters
	Page    int
	Limit   int
}

func (p ListParams) query() url.Values {
	q := p.Filters.Query()
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// ListAssets fetches one page of assets. The endpoint answers either with a
// bare array (older deployments, always a single page) or with an
// {assets, page, pages} envelope.
func (c *Client) ListAssets(ctx context.Context, p ListParams) (*v1.AssetPage, error) {
	q := p.query()
	if c.cacheBust {
		q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint("/assets", q), nil, &raw); err != nil {
		return nil, err
	}
	return decodeAssetPage(raw)
}

func decodeAssetPage(raw json.RawMessage) (*v1.AssetPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrUnrecognizedShape
	}

	switch trimmed[0] {
	case '[':
		var assets []v1.Asset
		if err := json.Unmarshal(trimmed, &assets); err != nil {
			return nil, fmt.Errorf("unable to decode asset list: %w", err)
		}
		return &v1.AssetPage{Assets: assets, Page: 1, Pages: 1}, nil
	case '{':
		var envelope struct {
			Assets *[]v1.Asset `json:"assets"`
			Page   int         `json:"page"`
			Pages  int         `json:"pages"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("unable to decode asset page: %w", err)
		}
		if envelope.Assets == nil {
			return nil, fmt.Errorf("%w: missing assets field", ErrUnrecognizedShape)
		}
		page := v1.AssetPage{Assets: *envelope.Assets, Page: envelope.Page, Pages: envelope.Pages}
		if page.Page < 1 {
			page.Page = 1
		}
		return &page, nil
	}
	return nil, ErrUnrecognizedShape
}

// GetAsset fetches a single asset. Concurrent lookups of the same id share
// one request.
func (c *Client) GetAsset(ctx context.Context, id v1.ID) (*v1.Asset, error) {
	v, err, _ := c.group.Do(id.String(), func() (interface{}, error) {
		var a v1.Asset
		if err := c.do(ctx, http.MethodGet, c.endpoint("/assets/"+url.PathEscape(id.String()), nil), nil, &a); err != nil {
			return nil, err
		}
		return &a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*v1.Asset), nil
}

// ExpressInterest tells the seller that the current user wants to buy.
func (c *Client) ExpressInterest(ctx context.Context, id v1.ID, message string) error {
	body := map[string]string{"message": message}
	return c.do(ctx, http.MethodPost, c.endpoint("/assets/"+url.PathEscape(id.String())+"/interest", nil), body, nil)
}
