// Package search talks to the external full-text index. The core never
// reads from it; items are pushed after create/update/delete, best effort.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bereal1995/jotrends-server/domain"
)

// httpIndex syncs items to an index service over plain REST:
// PUT <base>/items/<id> with the document, DELETE <base>/items/<id>.
type httpIndex struct {
	baseURL string
	client  *http.Client
}

var _ domain.SearchIndex = (*httpIndex)(nil)

func NewHTTPIndex(baseURL string, client *http.Client) *httpIndex {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpIndex{
		baseURL: baseURL,
		client:  client,
	}
}

func (h *httpIndex) Sync(ctx context.Context, doc domain.ItemDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.docURL(doc.ID), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req)
}

func (h *httpIndex) Delete(ctx context.Context, itemID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.docURL(itemID), nil)
	if err != nil {
		return err
	}
	return h.do(req)
}

func (h *httpIndex) docURL(id int64) string {
	return fmt.Sprintf("%s/items/%d", h.baseURL, id)
}

func (h *httpIndex) do(req *http.Request) error {
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("search index responded %d", resp.StatusCode)
	}
	return nil
}

// disabledIndex is used when no index endpoint is configured.
type disabledIndex struct{}

var _ domain.SearchIndex = disabledIndex{}

func NewDisabledIndex() disabledIndex {
	return disabledIndex{}
}

func (disabledIndex) Sync(context.Context, domain.ItemDocument) error { return nil }
func (disabledIndex) Delete(context.Context, int64) error             { return nil }
