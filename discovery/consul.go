package discovery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	consul "github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/network"
	"go.uber.org/zap"
)

var (
	ErrNoCandidate = errors.New("no healthy endpoint found")
)

// Consul resolves server endpoints from the consul catalog, and registers local listeners in it.
type Consul struct {
	id     string
	api    *consul.Client
	logger *zap.Logger
}

// NewConsul builds a consul client from the environment, the way the consul CLI does.
func NewConsul(id string, logger *zap.Logger) (*Consul, error) {
	consulConfig := consul.DefaultConfig()
	consulConfig.HttpClient = http.DefaultClient
	api, err := consul.NewClient(consulConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create consul client")
	}
	return NewConsulWithAPI(id, api, logger), nil
}

func NewConsulWithAPI(id string, api *consul.Client, logger *zap.Logger) *Consul {
	return &Consul{id: id, api: api, logger: logger}
}

// Candidates returns the endpoints of service that are not failing their health checks.
func (c *Consul) Candidates(ctx context.Context, service string) ([]string, error) {
	services, _, err := c.api.Health().Service(service, "", false, (&consul.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query consul")
	}
	out := []string{}
	for _, entry := range services {
		status := entry.Checks.AggregatedStatus()
		c.logger.Debug("discovered endpoint",
			zap.String("service", service),
			zap.String("endpoint_address", entry.Service.Address),
			zap.Int("endpoint_port", entry.Service.Port),
			zap.String("endpoint_health", status))
		if status == consul.HealthCritical {
			continue
		}
		out = append(out, fmt.Sprintf("%s:%d", entry.Service.Address, entry.Service.Port))
	}
	return out, nil
}

// WaitCandidates blocks until service has at least one healthy endpoint.
func (c *Consul) WaitCandidates(ctx context.Context, service string) ([]string, error) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		candidates, err := c.Candidates(ctx, service)
		if err == nil && len(candidates) > 0 {
			return candidates, nil
		}
		if err != nil {
			c.logger.Warn("failed to discover endpoints", zap.String("service", service), zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ErrNoCandidate, service)
		case <-ticker.C:
		}
	}
}

// Register announces a listener as an instance of service, with a TCP health check.
func (c *Consul) Register(service string, config network.Configuration) error {
	address := config.Endpoint()
	return c.api.Agent().ServiceRegister(&consul.AgentServiceRegistration{
		ID:      c.serviceID(service, config),
		Name:    service,
		Address: config.AdvertisedAddress,
		Port:    config.AdvertisedPort,
		Tags:    []string{config.Name},
		Meta: map[string]string{
			"session_id": c.id,
		},
		EnableTagOverride: true,
		Check: &consul.AgentServiceCheck{
			CheckID:                        fmt.Sprintf("check-tcp-%s-%s", service, c.id),
			Name:                           fmt.Sprintf("TCP Check on address %s", address),
			DeregisterCriticalServiceAfter: "5m",
			TCP:                            address,
			Interval:                       "10s",
			Timeout:                        "2s",
		},
	})
}

func (c *Consul) Deregister(service string, config network.Configuration) error {
	return c.api.Agent().ServiceDeregister(c.serviceID(service, config))
}

func (c *Consul) serviceID(service string, config network.Configuration) string {
	return fmt.Sprintf("%s-%s-%s", service, config.Name, c.id)
}
