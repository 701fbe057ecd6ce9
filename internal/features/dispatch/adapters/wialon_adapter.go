package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"manifest-dispatcher/internal/core/config"
	"manifest-dispatcher/internal/core/httpclient"
	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/features/dispatch/domain"

	"go.uber.org/zap"
)

// ErrNoSession indicates the remote service accepted the login call but did
// not return a session identifier, which means the token is invalid.
var ErrNoSession = errors.New("login did not return a session identifier")

const (
	ajaxPath = "/wialon/ajax.html"

	svcLogin       = "token/login"
	svcOrderUpdate = "order/update"
	svcOptimize    = "order/optimize"
	svcRouteUpdate = "order/route_update"

	// followRoadsFlag requests road-following geometry on optimize and
	// route update calls.
	followRoadsFlag = 1
)

// WialonGateway talks to a Wialon-compatible logistics API. All calls go
// through one endpoint with the service name and JSON parameters in the
// query string.
type WialonGateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewWialonGateway creates a gateway from the service configuration.
func NewWialonGateway(cfg config.WialonConfig) *WialonGateway {
	return &WialonGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpclient.NewClient(time.Duration(cfg.TimeoutSeconds) * time.Second),
		logger:  logger.Get(),
	}
}

// wialonOrderParams is the nested "p" object of the order payload.
type wialonOrderParams struct {
	Name       string `json:"n"`
	Address    string `json:"a"`
	Weight     int    `json:"w"`
	Cost       string `json:"c"`
	CustomerID string `json:"cid"`
	InvoiceNo  string `json:"uic"`
	Comment    string `json:"cm"`
}

// wialonOrder is the wire payload for order/update.
type wialonOrder struct {
	ItemID        int               `json:"itemId"`
	ID            int64             `json:"id"`
	Name          string            `json:"n"`
	OldOrderID    int64             `json:"oldOrderId"`
	OldOrderFiles []any             `json:"oldOrderFiles"`
	Params        wialonOrderParams `json:"p"`
	Resource      string            `json:"rp"`
	TimeFrom      int64             `json:"tf"`
	TimeTo        int64             `json:"tt"`
	ServiceTime   int               `json:"trt"`
	Radius        int               `json:"r"`
	Lat           float64           `json:"y"`
	Long          float64           `json:"x"`
	Timezone      int               `json:"tz"`
	ExecJobs      map[string]any    `json:"ej"`
	CallMode      string            `json:"callMode"`
	Deliveries    []any             `json:"dp"`
	CustomFields  map[string]string `json:"cf"`
	RoutingMode   string            `json:"routing_mode"`
	PathType      string            `json:"path_type"`
}

func newWialonOrder(order *domain.Order) wialonOrder {
	return wialonOrder{
		ItemID:        domain.ItemCategoryID,
		ID:            order.ID,
		Name:          order.CustomerName,
		OldOrderFiles: []any{},
		Params: wialonOrderParams{
			Name:       order.CustomerName,
			Address:    order.Address,
			Weight:     order.Weight,
			Cost:       order.Amount,
			CustomerID: order.CustomerID,
			InvoiceNo:  order.InvoiceNo,
			Comment:    domain.DeliveryNote,
		},
		Resource:    order.Resource,
		TimeFrom:    order.Window.From,
		TimeTo:      order.Window.To,
		ServiceTime: domain.ServiceDurationSeconds,
		Radius:      domain.StopRadiusMeters,
		Lat:         order.Lat,
		Long:        order.Long,
		Timezone:    domain.TimezoneOffsetHours,
		ExecJobs:    map[string]any{},
		CallMode:    "create",
		Deliveries:  []any{},
		CustomFields: map[string]string{
			"delivery_notes": "",
			"payment_status": "",
		},
		RoutingMode: domain.RoutingModeOptimal,
		PathType:    domain.RoutingModeOptimal,
	}
}

// Login implements OrderGateway.
func (g *WialonGateway) Login(ctx context.Context, token string) (string, error) {
	raw, err := g.call(ctx, "", svcLogin, map[string]string{"token": token})
	if err != nil {
		return "", fmt.Errorf("login call failed: %w", err)
	}

	var res struct {
		SessionID string `json:"eid"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if res.SessionID == "" {
		return "", ErrNoSession
	}

	return res.SessionID, nil
}

// CreateOrder implements OrderGateway. The remote service answers with a
// bare numeric order id on success and an {"error": N} object on failure.
func (g *WialonGateway) CreateOrder(ctx context.Context, sessionID string, order *domain.Order) (int64, error) {
	raw, err := g.call(ctx, sessionID, svcOrderUpdate, newWialonOrder(order))
	if err != nil {
		return 0, fmt.Errorf("order creation call failed: %w", err)
	}
	if err := remoteError(raw); err != nil {
		return 0, err
	}

	var id int64
	if err := json.Unmarshal(bytes.TrimSpace(raw), &id); err != nil {
		return 0, fmt.Errorf("unexpected order creation response %q: %w", raw, err)
	}

	g.logger.Debug("Order created", zap.Int64("order_id", id), zap.String("customer", order.CustomerName))
	return id, nil
}

// OptimizeRoute implements OrderGateway.
func (g *WialonGateway) OptimizeRoute(ctx context.Context, sessionID string, req domain.OptimizationRequest) ([]int64, error) {
	params := struct {
		Orders           []int64 `json:"orders"`
		Resource         string  `json:"resource"`
		Flags            int     `json:"flags"`
		Departure        int64   `json:"departure"`
		PathType         string  `json:"path_type"`
		OptimizationType string  `json:"optimization_type"`
	}{
		Orders:           req.OrderIDs,
		Resource:         req.Resource,
		Flags:            followRoadsFlag,
		Departure:        req.Departure,
		PathType:         domain.RoutingModeOptimal,
		OptimizationType: "time",
	}

	raw, err := g.call(ctx, sessionID, svcOptimize, params)
	if err != nil {
		return nil, fmt.Errorf("route optimization call failed: %w", err)
	}
	if err := remoteError(raw); err != nil {
		return nil, err
	}

	var res struct {
		Orders []int64 `json:"orders"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode optimization response: %w", err)
	}
	if len(res.Orders) == 0 {
		return nil, fmt.Errorf("optimization response carries no order sequence")
	}

	return res.Orders, nil
}

// UpdateRoutePath implements OrderGateway.
func (g *WialonGateway) UpdateRoutePath(ctx context.Context, sessionID string, orderID int64) error {
	params := struct {
		ID       int64  `json:"id"`
		PathType string `json:"path_type"`
		Flags    int    `json:"flags"`
	}{
		ID:       orderID,
		PathType: domain.RoutingModeOptimal,
		Flags:    followRoadsFlag,
	}

	raw, err := g.call(ctx, sessionID, svcRouteUpdate, params)
	if err != nil {
		return fmt.Errorf("route path update call failed: %w", err)
	}

	return remoteError(raw)
}

// call posts one API request. The protocol puts everything in the query
// string: svc names the operation, params carries the JSON-encoded payload
// and sid the session.
func (g *WialonGateway) call(ctx context.Context, sessionID, svc string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", svc, err)
	}

	query := url.Values{}
	query.Set("svc", svc)
	query.Set("params", string(payload))
	if sessionID != "" {
		query.Set("sid", sessionID)
	}

	endpoint := g.baseURL + ajaxPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", svc, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", svc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request returned status %d", svc, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", svc, err)
	}

	return body, nil
}

// remoteError inspects a response body for the service's {"error": N} shape.
// Successful bodies may be bare numbers, so only objects are probed.
func remoteError(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var probe struct {
		Error  *int   `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil || probe.Error == nil {
		return nil
	}

	if probe.Reason != "" {
		return fmt.Errorf("remote service error %d: %s", *probe.Error, probe.Reason)
	}
	return fmt.Errorf("remote service error %d", *probe.Error)
}
