// Package store is the HTTP client for the external collection store that
// owns every record this service touches. The service holds no persistent
// state of its own: each call here is an independent request, no batching,
// no cross-call transactions.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/leih-lokal/kiosk-service/config"
	"github.com/leih-lokal/kiosk-service/internal/errs"
)

const (
	CollectionCustomers    = "customer"
	CollectionItems        = "item"
	CollectionRentals      = "rental"
	CollectionReservations = "reservation"

	authCollection = "_superusers"
	listPageSize   = 500
)

type Query struct {
	Filter Filter
	Sort   string
	Expand string
}

type Client struct {
	log    *zap.Logger
	client *http.Client
	cfg    config.Store

	mu    sync.RWMutex
	token string
}

func New(log *zap.Logger, cfg config.Store) *Client {
	return &Client{
		log:    log.Named("store"),
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

type authResponse struct {
	Token string `json:"token"`
}

// Authenticate logs in with the kiosk's out-of-band credentials. A failure
// here at startup is fatal for the whole service.
func (c *Client) Authenticate(ctx context.Context) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("api/collections/%s/auth-with-password", authCollection),
		map[string]string{"identity": c.cfg.Identity, "password": c.cfg.Password},
		&resp)
	if err != nil {
		return errors.Wrap(err, "store authenticate")
	}
	c.setToken(resp.Token)
	return nil
}

// Refresh renews the session token. On failure the stale token is dropped
// and a full re-authentication is attempted.
func (c *Client) Refresh(ctx context.Context) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("api/collections/%s/auth-refresh", authCollection),
		nil, &resp)
	if err != nil {
		c.setToken("")
		return c.Authenticate(ctx)
	}
	c.setToken(resp.Token)
	return nil
}

// StartRefreshLoop keeps the session alive on a fixed interval until ctx is
// canceled.
func (c *Client) StartRefreshLoop(ctx context.Context) {
	go func() {
		t := time.NewTicker(c.cfg.AuthRefresh)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := c.Refresh(ctx); err != nil {
					c.log.Error("auth refresh", zap.Error(err))
				}
			}
		}
	}()
}

type listResponse struct {
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

// List fetches every record of a collection matching q into out (a pointer
// to a slice), walking all result pages.
func (c *Client) List(ctx context.Context, collection string, q Query, out any) error {
	items := make([]json.RawMessage, 0, listPageSize)
	for page := 1; ; page++ {
		var resp listResponse
		if err := c.do(ctx, http.MethodGet, recordsPath(collection)+"?"+q.encode(page), nil, &resp); err != nil {
			return errors.Wrapf(err, "list %s", collection)
		}
		items = append(items, resp.Items...)
		if resp.TotalPages == 0 || page >= resp.TotalPages {
			break
		}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Client) Get(ctx context.Context, collection, id string, out any) error {
	err := c.do(ctx, http.MethodGet, recordsPath(collection)+"/"+url.PathEscape(id), nil, out)
	return errors.Wrapf(err, "get %s/%s", collection, id)
}

func (c *Client) Create(ctx context.Context, collection string, fields, out any) error {
	err := c.do(ctx, http.MethodPost, recordsPath(collection), fields, out)
	return errors.Wrapf(err, "create %s", collection)
}

func (c *Client) Update(ctx context.Context, collection, id string, fields, out any) error {
	err := c.do(ctx, http.MethodPatch, recordsPath(collection)+"/"+url.PathEscape(id), fields, out)
	return errors.Wrapf(err, "update %s/%s", collection, id)
}

func recordsPath(collection string) string {
	return fmt.Sprintf("api/collections/%s/records", url.PathEscape(collection))
}

func (q Query) encode(page int) string {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("filter", string(q.Filter))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Expand != "" {
		v.Set("expand", q.Expand)
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("perPage", strconv.Itoa(listPageSize))
	return v.Encode()
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		b := bytes.NewBuffer(nil)
		if err := json.NewEncoder(b).Encode(body); err != nil {
			return err
		}
		rd = b
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+"/"+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
	if token := c.getToken(); token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(errs.ErrStoreUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errs.ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er) //nolint:errcheck
		return errors.Wrapf(errs.ErrStoreUnavailable, "status %d: %s", resp.StatusCode, er.Message)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
