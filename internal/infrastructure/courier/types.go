package courier

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the body of POST /create_order
type CreateOrderRequest struct {
	Invoice          string      `json:"invoice"`
	RecipientName    string      `json:"recipient_name"`
	RecipientPhone   string      `json:"recipient_phone"`
	RecipientAddress string      `json:"recipient_address"`
	RecipientCity    string      `json:"recipient_city"`
	RecipientZone    string      `json:"recipient_zone"`
	CODAmount        json.Number `json:"cod_amount"`
	Note             string      `json:"note"`
	ItemType         string      `json:"item_type"`
	Weight           float64     `json:"weight"`
	ItemQuantity     int         `json:"item_quantity"`
	ItemDescription  string      `json:"item_description"`
	AmountToCollect  json.Number `json:"amount_to_collect"`
	DeliveryType     int         `json:"delivery_type"`
	PackageType      string      `json:"package_type"`
	ProductPrice     json.Number `json:"product_price"`
}

// CancelOrderRequest is the body of POST /cancel_order
type CancelOrderRequest struct {
	TrackingCode string `json:"tracking_code"`
}

// Consignment is the parcel record in a create_order response
type Consignment struct {
	ConsignmentID flexString      `json:"consignment_id"`
	ID            flexString      `json:"id"`
	TrackingCode  string          `json:"tracking_code"`
	Invoice       string          `json:"invoice"`
	CODAmount     decimal.Decimal `json:"cod_amount"`
	Status        string          `json:"status"`
}

// Identifier returns consignment_id, falling back to id
func (c *Consignment) Identifier() string {
	if c.ConsignmentID != "" {
		return string(c.ConsignmentID)
	}
	return string(c.ID)
}

// CreateOrderResponse is the create_order answer. Status is optional and set to a
// non-200 code when the courier rejects the parcel with HTTP 200.
type CreateOrderResponse struct {
	Status      flexString   `json:"status"`
	Message     string       `json:"message"`
	Consignment *Consignment `json:"consignment"`
}

// StatusResponse is the status_by_trackingcode answer. A numeric status other
// than 200 with a message marks a failed lookup.
type StatusResponse struct {
	Status         flexString        `json:"status"`
	Message        string            `json:"message"`
	DeliveryStatus string            `json:"delivery_status"`
	History        []json.RawMessage `json:"history"`
}

// ParcelStatus returns the textual parcel status. Some deployments put the
// numeric response code in status and the parcel state in delivery_status.
func (r *StatusResponse) ParcelStatus() string {
	if r.DeliveryStatus != "" {
		return r.DeliveryStatus
	}
	return string(r.Status)
}

// BalanceResponse is the get_balance answer
type BalanceResponse struct {
	Balance        *decimal.Decimal `json:"balance"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
}

// Amount returns balance, falling back to current_balance
func (r *BalanceResponse) Amount() decimal.Decimal {
	switch {
	case r.Balance != nil:
		return *r.Balance
	case r.CurrentBalance != nil:
		return *r.CurrentBalance
	default:
		return decimal.Zero
	}
}

// CancelOrderResponse is the cancel_order answer
type CancelOrderResponse struct {
	Status  flexString `json:"status"`
	Message string     `json:"message"`
}

// errorBody collects the fields couriers use to describe a failure
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// flexString accepts a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// isErrorCode reports whether f holds a numeric status code other than 200.
// Textual parcel states such as "delivered" are not error codes.
func (f flexString) isErrorCode() bool {
	n, err := strconv.Atoi(strings.TrimSpace(string(f)))
	return err == nil && n != 200
}

// isOK reports whether an embedded status code is absent or 200
func (f flexString) isOK() bool {
	s := strings.TrimSpace(string(f))
	return s == "" || s == "200"
}
