// Package api wraps the portal REST backend. Every outbound call carries
// the bearer token from the session store when one is present; there is no
// retry and no caching, and all failures are reported through the Error
// taxonomy in errors.go.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/911interpreters/portal/internal/metrics"
	"github.com/911interpreters/portal/internal/session"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client is the REST backend client.
type Client struct {
	http     *resty.Client
	sessions session.Store
	logger   zerolog.Logger
}

// New creates a backend client. The session store supplies the bearer
// token; requests made while signed out simply omit the header.
func New(baseURL string, timeout time.Duration, sessions session.Store, logger zerolog.Logger) *Client {
	c := &Client{
		sessions: sessions,
		logger:   logger.With().Str("component", "api-client").Logger(),
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			r.SetHeader("X-Request-Id", uuid.NewString())
			sess, err := c.sessions.Get(r.Context())
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					return nil
				}
				return err
			}
			r.SetHeader("Authorization", "Bearer "+sess.Token)
			return nil
		})

	return c
}

// execute runs the request and classifies any failure.
func (c *Client) execute(req *resty.Request, method, path string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, path)
	metrics.APIRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := KindNetwork
		msg := genericMessage
		if errors.Is(err, context.Canceled) {
			kind = KindCanceled
			msg = "request superseded"
		}
		metrics.APIRequestErrors.WithLabelValues(path, string(kind)).Inc()
		if kind != KindCanceled {
			c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		}
		return nil, &Error{Kind: kind, Message: msg, cause: err}
	}

	metrics.APIRequestsTotal.WithLabelValues(path, method, strconv.Itoa(resp.StatusCode())).Inc()

	if resp.IsError() {
		kind := classifyStatus(resp.StatusCode())
		apiErr := &Error{
			Kind:    kind,
			Status:  resp.StatusCode(),
			Message: errorMessage(resp.Body()),
		}
		metrics.APIRequestErrors.WithLabelValues(path, string(kind)).Inc()
		c.logger.Warn().
			Int("status", resp.StatusCode()).
			Str("method", method).
			Str("path", path).
			Str("kind", string(kind)).
			Msg("Backend rejected request")
		return nil, apiErr
	}

	return resp, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	return c.execute(req, http.MethodGet, path)
}

func (c *Client) post(ctx context.Context, path string, body any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	return c.execute(req, http.MethodPost, path)
}

func (c *Client) put(ctx context.Context, path string, body any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx).SetBody(body)
	return c.execute(req, http.MethodPut, path)
}

func decodeInto(resp *resty.Response, out any) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Kind: KindNetwork, Message: genericMessage, cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// Login authenticates with username/password.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	resp, err := c.post(ctx, "/customer-video-login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var out LoginResponse
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupMFA begins software-token enrollment for the given auth session.
func (c *Client) SetupMFA(ctx context.Context, authSession string) (*MFASetupResponse, error) {
	resp, err := c.post(ctx, "/auth/setup-mfa", map[string]string{"session": authSession})
	if err != nil {
		return nil, err
	}
	var out MFASetupResponse
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset OTP for the account's email.
func (c *Client) ForgotPassword(ctx context.Context, username string) error {
	_, err := c.post(ctx, "/customer-video-forgot-password", map[string]string{"username": username})
	return err
}

// ResetPassword confirms a forgot-password flow with the emailed OTP.
func (c *Client) ResetPassword(ctx context.Context, username, otp, newPassword, confirmPassword string) error {
	_, err := c.post(ctx, "/customer-video-reset-password", map[string]string{
		"username":         username,
		"otp":              otp,
		"new_password":     newPassword,
		"confirm_password": confirmPassword,
	})
	return err
}

// ChangePassword changes the signed-in user's password and returns the
// replacement access token.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (*ChangePasswordResponse, error) {
	resp, err := c.post(ctx, "/user-video-change-password", map[string]string{
		"old_password":     oldPassword,
		"new_password":     newPassword,
		"confirm_password": confirmPassword,
	})
	if err != nil {
		return nil, err
	}
	var out ChangePasswordResponse
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLanguages fetches the master language list in server order.
func (c *Client) ListLanguages(ctx context.Context) ([]LanguageEntry, error) {
	resp, err := c.get(ctx, "/list-all-video-languages", nil)
	if err != nil {
		return nil, err
	}
	var out []LanguageEntry
	if _, err := decodeList(resp.Body(), &out); err != nil {
		return nil, &Error{Kind: KindNetwork, Message: genericMessage, cause: err}
	}
	return out, nil
}

// GetAvailability fetches per-language interpreter availability. Names may
// carry _Video/_Audio suffixes.
func (c *Client) GetAvailability(ctx context.Context) ([]AvailabilityEntry, error) {
	resp, err := c.get(ctx, "/get-availability-by-languages", nil)
	if err != nil {
		return nil, err
	}
	var out []AvailabilityEntry
	if _, err := decodeList(resp.Body(), &out); err != nil {
		return nil, &Error{Kind: KindNetwork, Message: genericMessage, cause: err}
	}
	return out, nil
}

// GetTopLanguages fetches the dashboard's top languages (names only).
func (c *Client) GetTopLanguages(ctx context.Context) ([]LanguageEntry, error) {
	resp, err := c.get(ctx, "/get-top-video-languages", nil)
	if err != nil {
		return nil, err
	}
	var out []LanguageEntry
	if _, err := decodeList(resp.Body(), &out); err != nil {
		return nil, &Error{Kind: KindNetwork, Message: genericMessage, cause: err}
	}
	return out, nil
}

// ListCallHistory fetches one page of call records for the given Eastern
// calendar-day range (YYYY-MM-DD strings).
func (c *Client) ListCallHistory(ctx context.Context, page, pageSize int, startDate, endDate string) (*CallHistoryPage, error) {
	query := map[string]string{
		"page":      strconv.Itoa(page),
		"page_size": strconv.Itoa(pageSize),
	}
	if startDate != "" {
		query["start_date"] = startDate
	}
	if endDate != "" {
		query["end_date"] = endDate
	}

	resp, err := c.get(ctx, "/list-calls-history-video", query)
	if err != nil {
		return nil, err
	}

	var records []CallRecord
	total, err := decodeList(resp.Body(), &records)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: genericMessage, cause: err}
	}
	return &CallHistoryPage{Records: records, Total: total}, nil
}

// GetProfile fetches the customer profile.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	resp, err := c.get(ctx, "/customer/profile", nil)
	if err != nil {
		return nil, err
	}
	var out Profile
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the customer profile.
func (c *Client) UpdateProfile(ctx context.Context, p Profile) error {
	_, err := c.put(ctx, "/customer/profile", p)
	return err
}

// GetVideoAccount fetches the customer's video account record.
func (c *Client) GetVideoAccount(ctx context.Context) (*VideoAccount, error) {
	resp, err := c.get(ctx, "/get-customer-video-account-by-id", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data VideoAccount `json:"data"`
	}
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateVideoAccount updates the customer's video account record.
func (c *Client) UpdateVideoAccount(ctx context.Context, update VideoAccountUpdate) error {
	_, err := c.post(ctx, "/user-update-customer-video-account", update)
	return err
}

// StoreVideoFlowData records the engagement identifier for a started call.
// Callers treat this as best-effort telemetry.
func (c *Client) StoreVideoFlowData(ctx context.Context, data FlowData) error {
	_, err := c.post(ctx, "/store-video-flow-data", data)
	return err
}

// GetUsageSummary fetches the customer's usage totals.
func (c *Client) GetUsageSummary(ctx context.Context) (*UsageTotals, error) {
	resp, err := c.get(ctx, "/get-usage-by-video-customer", nil)
	if err != nil {
		return nil, err
	}
	var out UsageTotals
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLanguageUsage fetches one page of per-language usage. The response
// carries the customer's grand-total seconds alongside the page.
func (c *Client) ListLanguageUsage(ctx context.Context, page, pageSize int) (*LanguageUsagePage, error) {
	resp, err := c.get(ctx, "/list-languages-usage-by-customer", map[string]string{
		"page":      strconv.Itoa(page),
		"page_size": strconv.Itoa(pageSize),
	})
	if err != nil {
		return nil, err
	}

	var rows []LanguageUsageRow
	total, err := decodeList(resp.Body(), &rows)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: genericMessage, cause: err}
	}

	var denom struct {
		TotalSecondsByCustomer float64 `json:"total_seconds_by_customer"`
	}
	_ = json.Unmarshal(resp.Body(), &denom)

	return &LanguageUsagePage{
		Rows:                   rows,
		Total:                  total,
		TotalSecondsByCustomer: denom.TotalSecondsByCustomer,
	}, nil
}
