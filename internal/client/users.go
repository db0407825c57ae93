// Package client talks to the users REST backend.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"useradmin/internal/domain"
	"useradmin/internal/domain/models"
)

const usersPath = "/users"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Unwrap exposes the matching domain error so callers can use the
// domain.Is* helpers.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ValidationError{Msg: e.Message}
	case http.StatusNotFound:
		return domain.NotFoundError{Resource: "user"}
	case http.StatusConflict:
		return domain.ConflictError{Resource: "user", Msg: e.Message}
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Users is the REST client for the users backend.
type Users struct {
	http   *resty.Client
	logger *zap.SugaredLogger
}

type Option func(*Users)

// WithTimeout caps every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Users) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Users) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewUsers returns a client for the backend rooted at base.
func NewUsers(base string, opts ...Option) *Users {
	c := &Users{
		http:   resty.New().SetBaseURL(strings.TrimSuffix(base, "/")),
		logger: zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(c)
	}
	c.http.SetHeader("Accept", "application/json")
	return c
}

// ListUsers issues the read request with params as the query string.
func (c *Users) ListUsers(ctx context.Context, params map[string]string) (models.UserPage, error) {
	var out models.UserPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		SetError(&errorBody{}).
		Get(usersPath)
	if err != nil {
		return models.UserPage{}, err
	}
	if resp.IsError() {
		return models.UserPage{}, restyErr(resp)
	}
	if out.Data == nil {
		out.Data = []models.User{}
	}
	c.logger.Debugw("users listed", "params", params, "count", len(out.Data), "total", out.TotalUsers)
	return out, nil
}

func (c *Users) GetUser(ctx context.Context, id int64) (models.User, error) {
	var out models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get(userPath(id))
	if err != nil {
		return models.User{}, err
	}
	if resp.IsError() {
		return models.User{}, restyErr(resp)
	}
	return out, nil
}

func (c *Users) CreateUser(ctx context.Context, in models.UserInput) (models.User, error) {
	var out models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&out).
		SetError(&errorBody{}).
		Post(usersPath)
	if err != nil {
		return models.User{}, err
	}
	if resp.IsError() {
		return models.User{}, restyErr(resp)
	}
	return out, nil
}

func (c *Users) UpdateUser(ctx context.Context, id int64, in models.UserInput) (models.User, error) {
	var out models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&out).
		SetError(&errorBody{}).
		Put(userPath(id))
	if err != nil {
		return models.User{}, err
	}
	if resp.IsError() {
		return models.User{}, restyErr(resp)
	}
	return out, nil
}

func (c *Users) DeleteUser(ctx context.Context, id int64) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{}).
		Delete(userPath(id))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

func userPath(id int64) string {
	return usersPath + "/" + strconv.FormatInt(id, 10)
}

func restyErr(resp *resty.Response) error {
	e := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
	}
	return e
}
