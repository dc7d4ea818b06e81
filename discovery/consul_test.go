package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	consul "github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vx-labs/boardsync/network"
	"go.uber.org/zap"
)

type agent struct {
	entries    []*consul.ServiceEntry
	registered *consul.AgentServiceRegistration
}

func (a *agent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Consul-Index", "1")
	w.Header().Set("X-Consul-LastContact", "0")
	w.Header().Set("X-Consul-KnownLeader", "true")
	switch {
	case strings.HasPrefix(r.URL.Path, "/v1/health/service/"):
		json.NewEncoder(w).Encode(a.entries)
	case r.URL.Path == "/v1/agent/service/register":
		a.registered = &consul.AgentServiceRegistration{}
		json.NewDecoder(r.Body).Decode(a.registered)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func entry(address string, port int, status string) *consul.ServiceEntry {
	return &consul.ServiceEntry{
		Service: &consul.AgentService{Address: address, Port: port},
		Checks:  consul.HealthChecks{{Status: status}},
	}
}

func newTestConsul(t *testing.T, a *agent) (*Consul, func()) {
	server := httptest.NewServer(a)
	config := consul.DefaultConfig()
	config.Address = strings.TrimPrefix(server.URL, "http://")
	api, err := consul.NewClient(config)
	require.NoError(t, err)
	return NewConsulWithAPI("session", api, zap.NewNop()), server.Close
}

func TestConsul(t *testing.T) {
	a := &agent{entries: []*consul.ServiceEntry{
		entry("10.0.0.1", 1883, consul.HealthPassing),
		entry("10.0.0.2", 1883, consul.HealthCritical),
		entry("10.0.0.3", 1883, consul.HealthWarning),
	}}
	c, cleanup := newTestConsul(t, a)
	defer cleanup()

	t.Run("critical endpoints are skipped", func(t *testing.T) {
		candidates, err := c.Candidates(context.Background(), "boardsync")
		require.NoError(t, err)
		require.Equal(t, []string{"10.0.0.1:1883", "10.0.0.3:1883"}, candidates)
	})
	t.Run("register", func(t *testing.T) {
		err := c.Register("boardsync", network.Configuration{Name: "tcp", BindPort: 1883, AdvertisedAddress: "10.0.0.4", AdvertisedPort: 1883})
		require.NoError(t, err)
		require.NotNil(t, a.registered)
		require.Equal(t, "boardsync-tcp-session", a.registered.ID)
		require.Equal(t, "10.0.0.4:1883", a.registered.Check.TCP)
	})
	t.Run("wait gives up with the context", func(t *testing.T) {
		empty, cleanup := newTestConsul(t, &agent{})
		defer cleanup()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := empty.WaitCandidates(ctx, "boardsync")
		require.Equal(t, ErrNoCandidate, errors.Cause(err))
	})
}
