// Package upstream is the client for the distributor's REST API, which owns orders,
// products, doctors and users.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"supply-desk/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client defines the upstream operations the order desk depends on.
type Client interface {
	// ListOrders returns order summaries in the API's list order.
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, error)

	// GetOrder returns an order with its cart products.
	GetOrder(ctx context.Context, id int64) (*model.OrderDetail, error)

	// CreateOrder submits a new order and returns its id. The id is 0 when the
	// order was accepted but the response did not name it.
	CreateOrder(ctx context.Context, in model.CreateOrderInput) (int64, error)

	// UpdateOrder replaces the discount, paid amount and lines of an order.
	UpdateOrder(ctx context.Context, id int64, in model.UpdateOrderInput) error

	// ListProductsBrief returns the slim product catalog.
	ListProductsBrief(ctx context.Context) ([]model.ProductBrief, error)

	// GetMe returns the profile of the user the token belongs to.
	GetMe(ctx context.Context) (*model.User, error)

	// ListDoctors returns all doctors.
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
}

// Config holds connection settings for the upstream API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// APIError is a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

// ErrNotFound is returned when the upstream API answers 404.
var ErrNotFound = errors.New("upstream resource not found")

type client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// New creates a resty-backed upstream client.
func New(cfg Config, logger zerolog.Logger) Client {
	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		r.SetAuthToken(cfg.Token)
	}

	return &client{
		http:   r,
		logger: logger.With().Str("component", "upstream").Logger(),
	}
}

// envelope is the {success, message, data} wrapper most endpoints use.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *client) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(filterParams(filter)).
		Get("/orders")
	if err := c.check(resp, err, "list orders"); err != nil {
		return nil, err
	}

	var orders []model.OrderSummary
	if err := decodeList(resp.Body(), &orders); err != nil {
		return nil, fmt.Errorf("failed to decode order list: %w", err)
	}
	return orders, nil
}

func (c *client) GetOrder(ctx context.Context, id int64) (*model.OrderDetail, error) {
	var detail model.OrderDetail
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&detail).
		Get("/orders/" + strconv.FormatInt(id, 10))
	if err := c.check(resp, err, "get order"); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *client) CreateOrder(ctx context.Context, in model.CreateOrderInput) (int64, error) {
	form := map[string]string{
		"doctorId": strconv.FormatInt(in.DoctorID, 10),
		"discount": in.Discount.String(),
		"paid":     in.Paid.String(),
		"phone":    in.Phone,
		"address":  in.Address,
		"fullName": in.FullName,
		"RepName":  in.RepName,
	}
	if in.Email != "" {
		form["email"] = in.Email
	}
	addLines(form, in.Lines)

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(form).
		Post("/orders")
	if err := c.check(resp, err, "create order"); err != nil {
		return 0, err
	}

	// The order exists once the API answered 2xx, with or without an id.
	id, err := decodeCreatedID(resp.Body())
	if err != nil {
		c.logger.Warn().Err(err).Int("line_count", len(in.Lines)).Msg("order created upstream without a readable id")
		return 0, nil
	}

	c.logger.Debug().Int64("order_id", id).Int("line_count", len(in.Lines)).Msg("order created upstream")
	return id, nil
}

func (c *client) UpdateOrder(ctx context.Context, id int64, in model.UpdateOrderInput) error {
	form := map[string]string{
		"discount":  in.Discount.String(),
		"totalPaid": in.Paid.String(),
		"_method":   http.MethodPut,
	}
	addLines(form, in.Lines)

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(form).
		Post("/orders/" + strconv.FormatInt(id, 10) + "/update")
	if err := c.check(resp, err, "update order"); err != nil {
		return err
	}

	c.logger.Debug().Int64("order_id", id).Int("line_count", len(in.Lines)).Msg("order updated upstream")
	return nil
}

func (c *client) ListProductsBrief(ctx context.Context) ([]model.ProductBrief, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/products/all/brief")
	if err := c.check(resp, err, "list products brief"); err != nil {
		return nil, err
	}

	var products []model.ProductBrief
	if err := decodeList(resp.Body(), &products); err != nil {
		return nil, fmt.Errorf("failed to decode product list: %w", err)
	}
	return products, nil
}

func (c *client) GetMe(ctx context.Context) (*model.User, error) {
	var env envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&env).
		Get("/users/self")
	if err := c.check(resp, err, "get current user"); err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode current user: %w", err)
	}
	return &user, nil
}

func (c *client) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/doctors")
	if err := c.check(resp, err, "list doctors"); err != nil {
		return nil, err
	}

	var doctors []model.Doctor
	if err := decodeList(resp.Body(), &doctors); err != nil {
		return nil, fmt.Errorf("failed to decode doctor list: %w", err)
	}
	return doctors, nil
}

// check turns transport failures and non-2xx responses into errors.
func (c *client) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("upstream request failed")
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	if resp.StatusCode() == http.StatusNotFound {
		c.logger.Debug().Str("op", op).Msg("upstream resource not found")
		return ErrNotFound
	}

	apiErr := &APIError{StatusCode: resp.StatusCode()}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil {
		apiErr.Message = body.Message
	}

	c.logger.Warn().
		Str("op", op).
		Int("status", apiErr.StatusCode).
		Str("message", apiErr.Message).
		Msg("upstream returned an error")
	return apiErr
}

func filterParams(f model.OrderFilter) map[string]string {
	params := map[string]string{}
	if f.DoctorID > 0 {
		params["doctorId"] = strconv.FormatInt(f.DoctorID, 10)
	}
	if f.UserID > 0 {
		params["userId"] = strconv.FormatInt(f.UserID, 10)
	}
	if f.ProductID > 0 {
		params["productId"] = strconv.FormatInt(f.ProductID, 10)
	}
	if f.Status != "" {
		params["status"] = f.Status
	}
	if f.Date != "" {
		params["date"] = f.Date
	}
	return params
}

// addLines encodes lines as products[i][field] form keys in submission order.
func addLines(form map[string]string, lines []model.OrderLineInput) {
	for i, l := range lines {
		prefix := "products[" + strconv.Itoa(i) + "]"
		form[prefix+"[id]"] = strconv.FormatInt(l.ID, 10)
		form[prefix+"[quantity]"] = strconv.Itoa(l.Quantity)
		form[prefix+"[price]"] = l.UnitPrice.String()
		form[prefix+"[notes]"] = l.Notes
	}
}

// decodeList accepts either a bare JSON array or a {"data": [...]} envelope.
func decodeList(body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if body[0] == '[' {
		return json.Unmarshal(body, out)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// decodeCreatedID reads the new order id from {"data": {"id": n}} or {"id": n}.
func decodeCreatedID(body []byte) (int64, error) {
	var payload struct {
		ID   int64 `json:"id"`
		Data *struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, err
	}
	if payload.Data != nil && payload.Data.ID > 0 {
		return payload.Data.ID, nil
	}
	if payload.ID > 0 {
		return payload.ID, nil
	}
	return 0, errors.New("response carries no order id")
}
