// Package discovery registers the API with a Consul agent.
package discovery

import (
	"fmt"
	"log/slog"
	"strconv"

	"devconnect/internal/config"
	"devconnect/internal/middleware"

	"github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this instance with Consul and removes it on shutdown.
type ServiceRegistry struct {
	client *api.Client
	cfg    *config.Config
}

// NewServiceRegistry returns nil when CONSUL_ADDRESS is empty.
func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	if cfg.ConsulAddress == "" {
		return nil, nil
	}

	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return &ServiceRegistry{client: client, cfg: cfg}, nil
}

// Registration describes this instance with an HTTP check on /health/live.
func (sr *ServiceRegistry) Registration() (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(sr.cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", sr.cfg.Port, err)
	}

	return &api.AgentServiceRegistration{
		ID:      sr.cfg.ServiceID,
		Name:    sr.cfg.ServiceName,
		Port:    port,
		Address: sr.cfg.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health/live", sr.cfg.ServiceAddress, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Tags: []string{"devconnect", "http", "api"},
		Meta: map[string]string{
			"protocol": "http",
			"env":      sr.cfg.Env,
		},
	}, nil
}

// Register announces the instance. A nil registry is a no-op.
func (sr *ServiceRegistry) Register() error {
	if sr == nil {
		return nil
	}
	reg, err := sr.Registration()
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register service with Consul: %w", err)
	}

	middleware.Logger.Info("registered with consul",
		slog.String("service_id", reg.ID), slog.String("address", sr.cfg.ConsulAddress))
	return nil
}

// Deregister removes the instance. A nil registry is a no-op.
func (sr *ServiceRegistry) Deregister() error {
	if sr == nil {
		return nil
	}
	if err := sr.client.Agent().ServiceDeregister(sr.cfg.ServiceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}
