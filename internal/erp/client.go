package erp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/redefine/facility/api/internal/config"
	"github.com/redefine/facility/api/internal/logger"
)

// Directory record models.
const (
	tenancyModel  = "property.tenancy"
	propertyModel = "property.property"
	partnerModel  = "res.partner"
	categoryModel = "res.partner.category"
)

// MaintenanceTag is the category every service provider carries; vendor
// matching requires it in addition to the property's internal label.
const MaintenanceTag = "Maintenance"

// ErrNotFound is returned when a referenced record does not exist in the
// entity directory.
var ErrNotFound = errors.New("record not found in entity directory")

// ErrAuthFailed is returned when the directory rejects the configured
// credentials.
var ErrAuthFailed = errors.New("entity directory authentication failed")

// Client talks to the entity directory over XML-RPC. Every operation
// authenticates first; there is no session caching and no retry layer —
// callers decide whether to retry or surface the failure.
type Client struct {
	cfg config.OdooConfig
	log *logger.Logger
	rpc func(path string) (caller, error)
}

// caller abstracts the underlying XML-RPC client for tests.
type caller interface {
	Call(method string, args interface{}, reply interface{}) error
	Close() error
}

// NewClient creates a directory client for the configured endpoint.
func NewClient(cfg config.OdooConfig, log *logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log,
		rpc: func(path string) (caller, error) {
			transport := &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			}
			return xmlrpc.NewClient(cfg.URL+path, transport)
		},
	}
}

// authenticate obtains a session uid for the configured credentials.
func (c *Client) authenticate(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	common, err := c.rpc("/xmlrpc/2/common")
	if err != nil {
		return 0, fmt.Errorf("failed to create directory client: %w", err)
	}
	defer common.Close()

	var reply interface{}
	args := []interface{}{c.cfg.Database, c.cfg.Username, c.cfg.APIKey, map[string]interface{}{}}
	if err := common.Call("authenticate", args, &reply); err != nil {
		return 0, fmt.Errorf("directory authenticate failed: %w", err)
	}

	uid := asInt64(reply)
	if uid == 0 {
		return 0, ErrAuthFailed
	}
	return uid, nil
}

// executeKw runs one model method on /xmlrpc/2/object.
func (c *Client) executeKw(ctx context.Context, uid int64, model, method string, args []interface{}, kwargs map[string]interface{}, reply interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	object, err := c.rpc("/xmlrpc/2/object")
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}
	defer object.Close()

	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}

	call := []interface{}{c.cfg.Database, uid, c.cfg.APIKey, model, method, args, kwargs}
	if err := object.Call("execute_kw", call, reply); err != nil {
		return fmt.Errorf("directory %s.%s failed: %w", model, method, err)
	}
	return nil
}

// searchRead is a convenience wrapper returning normalized record maps.
func (c *Client) searchRead(ctx context.Context, uid int64, model string, domain []interface{}, fields []string, limit int) ([]map[string]interface{}, error) {
	kwargs := map[string]interface{}{"fields": fields}
	if limit > 0 {
		kwargs["limit"] = limit
	}

	var reply interface{}
	if err := c.executeKw(ctx, uid, model, "search_read", []interface{}{domain}, kwargs, &reply); err != nil {
		return nil, err
	}
	return records(reply), nil
}
