// Package commercetest provides an in-process fake of the remote commerce API for tests.
package commercetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
)

// Route patterns served by the fake, as gin registers them.
const (
	RouteCart        = "GET /cart"
	RouteAdd         = "POST /cart/add"
	RouteRemove      = "DELETE /cart/cartitem/destroy"
	RouteUpdate      = "PUT /cart/update-quantity"
	RouteCoupons     = "GET /couponList"
	RouteApplyCoupon = "POST /apply-to-cart"
	RouteOrders      = "POST /orders"
	RouteOrder       = "GET /order-data/:number"
	RouteSettings    = "GET /site-infos"
	RouteLogin       = "POST /auth/login"
	RouteMe          = "GET /auth/me"
)

// Response is one canned answer. When Wait is non-nil the handler blocks until it is closed.
type Response struct {
	Status int
	Body   string
	Wait   chan struct{}
}

// JSON is a 200 response with body.
func JSON(body string) Response {
	return Response{Status: http.StatusOK, Body: body}
}

// Status is a response with status code and body.
func Status(code int, body string) Response {
	return Response{Status: code, Body: body}
}

// Request is what the fake received.
type Request struct {
	Route  string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
	Bearer string
}

// Server is a fake commerce API. Responses queue per route; the last one sticks.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string][]Response
	calls     map[string]int
	requests  []Request
}

// NewServer starts a fake; callers Close it.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		responses: make(map[string][]Response),
		calls:     make(map[string]int),
	}
	router := gin.New()
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/cart/add"},
		{http.MethodDelete, "/cart/cartitem/destroy"},
		{http.MethodPut, "/cart/update-quantity"},
		{http.MethodGet, "/couponList"},
		{http.MethodPost, "/apply-to-cart"},
		{http.MethodPost, "/orders"},
		{http.MethodGet, "/order-data/:number"},
		{http.MethodGet, "/site-infos"},
		{http.MethodPost, "/auth/login"},
		{http.MethodGet, "/auth/me"},
	} {
		router.Handle(route.method, route.path, s.serve)
	}
	s.Server = httptest.NewServer(router)
	return s
}

// Handle queues responses for a route such as RouteCart.
func (s *Server) Handle(route string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[route] = append(s.responses[route], responses...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo filters Requests by route.
func (s *Server) RequestsTo(route string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

// Calls reports how many times route was hit.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) serve(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()

	rec := Request{Route: route, Path: c.Request.URL.Path, Query: map[string]string{}}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			rec.Query[k] = v[0]
		}
	}
	if raw, err := io.ReadAll(c.Request.Body); err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}
	if auth := c.GetHeader("Authorization"); len(auth) > len("Bearer ") {
		rec.Bearer = auth[len("Bearer "):]
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	idx := s.calls[route]
	s.calls[route]++
	queued := s.responses[route]
	s.mu.Unlock()

	if len(queued) == 0 {
		c.Data(http.StatusNotFound, "application/json", []byte(`{"message":"no fake response"}`))
		return
	}
	if idx >= len(queued) {
		idx = len(queued) - 1
	}
	resp := queued[idx]
	if resp.Wait != nil {
		<-resp.Wait
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Data(status, "application/json", []byte(resp.Body))
}
