package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ProviderSteadfast is stored in order.courier for parcels created by this client
const ProviderSteadfast = "steadfast"

// maxResponseSize is the maximum accepted response body (1MB)
const maxResponseSize = 1 << 20

const maxItemDescription = 200

// SteadfastClient implements the courier gateway against the Steadfast API.
// A client without credentials is valid and fails every call with a configuration error.
type SteadfastClient struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSteadfastClient creates a new Steadfast client
// A nil cfg yields a client without credentials.
func NewSteadfastClient(cfg *Config, logger *zap.Logger) *SteadfastClient {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SteadfastClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("courier"),
	}
}

// Name returns the provider identifier
func (c *SteadfastClient) Name() string {
	return ProviderSteadfast
}

// CreateParcel dispatches an order as a new consignment
func (c *SteadfastClient) CreateParcel(ctx context.Context, o *order.Order, categories map[int64]string) (*apporder.ParcelResult, error) {
	req := c.buildCreateOrderRequest(o, categories)

	body, err := c.do(ctx, "create_order", http.MethodPost, "/create_order", req)
	if err != nil {
		return nil, err
	}

	var resp CreateOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "create_order", Message: "invalid courier response: " + err.Error(), Err: err}
	}

	if !resp.Status.isOK() {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("courier rejected the parcel (status %s)", resp.Status)
		}
		c.logger.Warn("parcel rejected",
			zap.Int64("order_id", o.ID),
			zap.String("status", string(resp.Status)),
			zap.String("message", msg),
		)
		return &apporder.ParcelResult{Success: false, Message: msg}, nil
	}
	if resp.Consignment == nil || resp.Consignment.Identifier() == "" {
		msg := resp.Message
		if msg == "" {
			msg = "courier response did not include a consignment"
		}
		return &apporder.ParcelResult{Success: false, Message: msg}, nil
	}

	cons := resp.Consignment
	invoice := cons.Invoice
	if invoice == "" {
		invoice = req.Invoice
	}
	return &apporder.ParcelResult{
		Success:       true,
		ConsignmentID: cons.Identifier(),
		TrackingCode:  cons.TrackingCode,
		TrackingLink:  c.TrackingLink(cons.TrackingCode),
		Invoice:       invoice,
		CODAmount:     cons.CODAmount,
		Status:        cons.Status,
		Message:       resp.Message,
	}, nil
}

func (c *SteadfastClient) buildCreateOrderRequest(o *order.Order, categories map[int64]string) CreateOrderRequest {
	city, zone := ResolveDestination(o.Customer.ShippingAddress, c.config.DefaultCity)

	cod := decimal.Zero
	if o.PaymentMethod.IsCashOnDelivery() {
		cod = o.TotalAmount
	}

	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	description := truncateRunes(strings.Join(names, ", "), maxItemDescription)

	return CreateOrderRequest{
		Invoice:          fmt.Sprintf("ORD-%d-%d", o.ID, time.Now().Unix()),
		RecipientName:    o.Customer.Name,
		RecipientPhone:   NormalizePhone(o.Customer.Phone),
		RecipientAddress: o.Customer.ShippingAddress,
		RecipientCity:    city,
		RecipientZone:    zone,
		CODAmount:        json.Number(cod.StringFixed(2)),
		Note:             o.Note,
		ItemType:         "parcel",
		Weight:           EstimateWeight(o.Items, categories),
		ItemQuantity:     o.ItemCount(),
		ItemDescription:  description,
		AmountToCollect:  json.Number(cod.StringFixed(2)),
		DeliveryType:     0,
		PackageType:      "regular",
		ProductPrice:     json.Number(o.TotalAmount.StringFixed(2)),
	}
}

// TrackingLink builds the public tracking URL of a parcel
func (c *SteadfastClient) TrackingLink(trackingCode string) string {
	if trackingCode == "" {
		return ""
	}
	return fmt.Sprintf(c.config.TrackingURLTemplate, url.PathEscape(trackingCode))
}

// TrackParcel returns the raw courier status of a parcel
func (c *SteadfastClient) TrackParcel(ctx context.Context, trackingCode string) (*apporder.TrackingResult, error) {
	body, err := c.do(ctx, "status_by_trackingcode", http.MethodGet, "/status_by_trackingcode/"+url.PathEscape(trackingCode), nil)
	if err != nil {
		return nil, err
	}

	var resp StatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "status_by_trackingcode", Message: "invalid courier response: " + err.Error(), Err: err}
	}
	if resp.Status.isErrorCode() {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("courier could not report the parcel status (status %s)", resp.Status)
		}
		return nil, &Error{Op: "status_by_trackingcode", Message: msg, Err: ErrRequestFailed}
	}
	return &apporder.TrackingResult{Status: resp.ParcelStatus(), History: resp.History}, nil
}

// CheckBalance returns the merchant balance
func (c *SteadfastClient) CheckBalance(ctx context.Context) (*apporder.BalanceResult, error) {
	body, err := c.do(ctx, "get_balance", http.MethodGet, "/get_balance", nil)
	if err != nil {
		return nil, err
	}

	var resp BalanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "get_balance", Message: "invalid courier response: " + err.Error(), Err: err}
	}
	return &apporder.BalanceResult{Balance: resp.Amount()}, nil
}

// CancelParcel asks the courier to cancel a parcel
func (c *SteadfastClient) CancelParcel(ctx context.Context, trackingCode string) (*apporder.CancelResult, error) {
	body, err := c.do(ctx, "cancel_order", http.MethodPost, "/cancel_order", CancelOrderRequest{TrackingCode: trackingCode})
	if err != nil {
		return nil, err
	}

	var resp CancelOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "cancel_order", Message: "invalid courier response: " + err.Error(), Err: err}
	}
	if !resp.Status.isOK() {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("courier refused the cancellation (status %s)", resp.Status)
		}
		return nil, &Error{Op: "cancel_order", Message: msg, Err: ErrRequestFailed}
	}
	return &apporder.CancelResult{Status: string(resp.Status), Message: resp.Message}, nil
}

// do performs one API call. Every failure is returned as *Error carrying the
// most specific message available.
func (c *SteadfastClient) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	if !c.config.HasCredentials() {
		return nil, missingCredentials()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("courier: failed to encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("courier: failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", c.config.APIKey)
	req.Header.Set("Secret-Key", c.config.SecretKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("courier request failed",
			zap.String("op", op),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &Error{Op: op, Message: notRespondingMessage, Err: errors.Join(ErrServiceUnavailable, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}

	c.logger.Debug("courier request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := extractMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("courier returned HTTP %d", resp.StatusCode)
		}
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Message: msg, Err: ErrRequestFailed}
	}
	return body, nil
}

// truncateRunes shortens s to at most n characters without splitting one
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// extractMessage pulls a human readable message out of an error body
func extractMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return truncateRunes(strings.TrimSpace(string(body)), maxItemDescription)
	}
	if eb.Message != "" {
		return eb.Message
	}
	if eb.Error != "" {
		return eb.Error
	}
	if len(eb.Errors) > 0 {
		var fields map[string][]string
		if err := json.Unmarshal(eb.Errors, &fields); err == nil {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			msgs := make([]string, 0, len(keys))
			for _, k := range keys {
				msgs = append(msgs, fields[k]...)
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		var s string
		if err := json.Unmarshal(eb.Errors, &s); err == nil {
			return s
		}
	}
	return ""
}

// Ensure SteadfastClient implements CourierGateway
var _ apporder.CourierGateway = (*SteadfastClient)(nil)
