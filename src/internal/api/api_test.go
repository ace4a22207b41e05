package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/echoreply/ifconf/src/internal/domain"
	apperrors "github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/mocks"
	"github.com/echoreply/ifconf/src/internal/zerotier"
)

func newTestRouter(t *testing.T, zt domain.ZeroTierClient) (http.Handler, *mocks.SimHost) {
	t.Helper()
	host := mocks.NewSimHost()
	deps := domain.NewTestDependencies(domain.TestDependencies{
		Runner:         host,
		Links:          host,
		ZeroTierClient: zt,
	})
	return NewRouter(deps), host
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Data T `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return body.Error
}

func TestGetInterfaces(t *testing.T) {
	router, host := newTestRouter(t, nil)
	link := host.AddLink("l2tpeth0", "l2tp", 1488)
	link.Addrs = []string{"10.10.0.1/30"}
	link.Up = true
	host.AddLink("macsec0", "macsec", 1460)

	rec := doGet(t, router, "/api/v1/interfaces")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	all := decodeData[InterfacesResponse](t, rec)
	if len(all.Interfaces) != 3 {
		t.Errorf("Expected 3 interfaces, got %+v", all.Interfaces)
	}

	rec = doGet(t, router, "/api/v1/interfaces?section=l2tpv3")
	filtered := decodeData[InterfacesResponse](t, rec)
	if len(filtered.Interfaces) != 1 {
		t.Fatalf("Expected 1 interface, got %+v", filtered.Interfaces)
	}
	got := filtered.Interfaces[0]
	if got.Name != "l2tpeth0" || got.Section != "l2tpv3" || got.MTU != 1488 || !got.Up {
		t.Errorf("Unexpected interface: %+v", got)
	}
	if len(got.Addresses) != 1 || got.Addresses[0] != "10.10.0.1/30" {
		t.Errorf("Unexpected addresses: %v", got.Addresses)
	}
}

func TestGetInterfacesUnknownSection(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doGet(t, router, "/api/v1/interfaces?section=wireless")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != ErrCodeInvalidRequest {
		t.Errorf("Expected %s, got %s", ErrCodeInvalidRequest, apiErr.Code)
	}
}

func TestGetInterface(t *testing.T) {
	router, host := newTestRouter(t, nil)
	host.AddLink("macsec0", "macsec", 1460)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/interfaces/macsec0", http.StatusOK},
		{"/api/v1/interfaces/macsec9", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doGet(t, router, tt.path)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestZeroTierEndpoints(t *testing.T) {
	zt := mocks.NewMockZeroTierClient()
	via := "10.147.17.1"
	n := zt.AddNetwork("8056c2e21c000001", "zt8056c2e2", "10.147.17.5/24")
	n.Routes = []zerotier.Route{{Target: "10.147.17.0/24"}, {Target: "0.0.0.0/0", Via: &via}}
	zt.PeersState = []zerotier.Peer{{Address: "62f865ae71", Role: "PLANET"}}
	zt.MoonsState = []zerotier.Moon{{ID: "000000deadbeef00"}}
	router, _ := newTestRouter(t, zt)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/zerotier/status", http.StatusOK},
		{"/api/v1/zerotier/networks", http.StatusOK},
		{"/api/v1/zerotier/networks/8056c2e21c000001", http.StatusOK},
		{"/api/v1/zerotier/networks/a09acf0233e4b070", http.StatusNotFound},
		{"/api/v1/zerotier/networks/nothex", http.StatusBadRequest},
		{"/api/v1/zerotier/networks/8056c2e21c000001/routes", http.StatusOK},
		{"/api/v1/zerotier/peers", http.StatusOK},
		{"/api/v1/zerotier/peers/62f865ae71", http.StatusOK},
		{"/api/v1/zerotier/peers/0000000000", http.StatusNotFound},
		{"/api/v1/zerotier/moons", http.StatusOK},
		{"/api/v1/zerotier/moons/000000deadbeef00", http.StatusOK},
		{"/api/v1/zerotier/moons/0000000000000001", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doGet(t, router, tt.path)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	rec := doGet(t, router, "/api/v1/zerotier/networks/8056c2e21c000001/routes")
	routes := decodeData[RoutesResponse](t, rec)
	if len(routes.Routes) != 2 || routes.Routes[1].Via == nil || *routes.Routes[1].Via != via {
		t.Errorf("Unexpected routes: %+v", routes)
	}
}

func TestZeroTierDisabled(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doGet(t, router, "/api/v1/zerotier/networks")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != ErrCodeServiceUnavailable {
		t.Errorf("Expected %s, got %s", ErrCodeServiceUnavailable, apiErr.Code)
	}
}

func TestZeroTierServiceError(t *testing.T) {
	zt := mocks.NewMockZeroTierClient()
	zt.StatusFunc = func() (*zerotier.Status, error) {
		return nil, apperrors.NewZeroTierError("failed to get status", nil)
	}
	router, _ := newTestRouter(t, zt)

	rec := doGet(t, router, "/api/v1/zerotier/status")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}

	rec = doGet(t, router, "/api/v1/health")
	health := decodeData[HealthCheckResponse](t, rec)
	if health.Healthy || health.Checks["zerotier"].Passed {
		t.Errorf("Expected unhealthy ZeroTier check, got %+v", health)
	}
	if !health.Checks["links"].Passed {
		t.Errorf("Expected links check to pass, got %+v", health.Checks["links"])
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, mocks.NewMockZeroTierClient())

	rec := doGet(t, router, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	health := decodeData[HealthCheckResponse](t, rec)
	if !health.Healthy {
		t.Errorf("Expected healthy, got %+v", health)
	}
	if health.Version.Version != Version {
		t.Errorf("Expected version %q, got %q", Version, health.Version.Version)
	}
}

func TestPrivateSubnetOnly(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		remote string
		status int
	}{
		{"127.0.0.1:1000", http.StatusOK},
		{"192.168.1.20:1000", http.StatusOK},
		{"[fe80::1]:1000", http.StatusOK},
		{"[::ffff:10.0.0.1]:1000", http.StatusOK},
		{"203.0.113.7:1000", http.StatusForbidden},
		{"garbage", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sections", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "10.0.0.1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestUnknownEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	if rec := doGet(t, router, "/api/v1/lists"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}
