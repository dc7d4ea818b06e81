package main

import (
	"context"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vx-labs/boardsync/admin"
	"github.com/vx-labs/boardsync/board"
	"github.com/vx-labs/boardsync/cli"
	"github.com/vx-labs/boardsync/discovery"
	"github.com/vx-labs/boardsync/history"
	"github.com/vx-labs/boardsync/network"
	"github.com/vx-labs/boardsync/session"
	"github.com/vx-labs/boardsync/transport"
	"github.com/vx-labs/boardsync/world"
	"go.uber.org/zap"
)

// node is a boardsync process: a session, its local world and the board editor driving it.
type node struct {
	logger  *zap.Logger
	session *session.Session
	world   *world.World
	scenes  *board.Scenes
	editor  *board.Editor
	runner  *history.Runner
}

func newNode(logger *zap.Logger, config session.Config) (*node, error) {
	w := world.New()
	scenes := board.NewScenes()
	s := session.New(logger, config, w)
	if err := board.Register(s.Registry(), w, scenes); err != nil {
		return nil, err
	}
	s.AddSynchronizer(scenes)
	n := &node{
		logger:  logger,
		session: s,
		world:   w,
		scenes:  scenes,
		editor:  board.NewEditor(w, scenes, s),
		runner:  history.NewRunner(history.New(history.DefaultCapacity), nil),
	}
	s.OnTick(func() {
		n.runner.Tick()
	})
	return n, nil
}

func (n *node) health() string {
	if n.session.IsServer() || n.session.IsClient() {
		return cli.HealthOK
	}
	return cli.HealthCritical
}

func addServerFlags(cmd *cobra.Command, v *viper.Viper) {
	network.RegisterFlags(cmd, v, "tcp", 7420)
	network.RegisterFlags(cmd, v, "tls", -1)
	network.RegisterFlags(cmd, v, "ws", -1)
	cmd.Flags().String("ws-path", transport.DefaultWSPath, "HTTP path of the websocket listener")
	cmd.Flags().String("tls-cert", "", "PEM certificate of the TLS listener")
	cmd.Flags().String("tls-key", "", "PEM private key of the TLS listener")
	cmd.Flags().String("token-key", "", "Require join tokens signed with this key")
	cmd.Flags().Int("max-connections", 0, "Accept at most this many concurrent connections per listener, 0 meaning unbounded")
	cmd.Flags().Int("admin-port", 7421, "Start the admin gRPC service on this port, -1 disabling it")
	cmd.Flags().Int("health-port", 9000, "Serve /health and /metrics on this port, -1 disabling it")
	cmd.Flags().String("consul-service", "", "Register listeners in consul under this service name")
	bind(cmd, v, "ws-path", "tls-cert", "tls-key", "token-key", "max-connections", "admin-port", "health-port", "consul-service")
}

// listen starts every enabled listener and returns their bound configuration.
func (n *node) listen(v *viper.Viper) ([]network.Configuration, error) {
	out := []network.Configuration{}
	start := func(name string, open func(port int) (net.Addr, error)) error {
		config, enabled, err := network.ConfigurationFromFlags(v, name)
		if err != nil || !enabled {
			return err
		}
		addr, err := open(config.BindPort)
		if err != nil {
			return errors.Wrapf(err, "failed to start %s listener", name)
		}
		config = config.Bound(addr)
		n.logger.Info(config.Describe())
		out = append(out, config)
		return nil
	}
	err := start("tcp", n.session.Listen)
	if err != nil {
		return nil, err
	}
	err = start("tls", func(port int) (net.Addr, error) {
		tlsConfig, err := transport.LoadTLSConfig(v.GetString("tls-cert"), v.GetString("tls-key"))
		if err != nil {
			return nil, err
		}
		return n.session.ListenTLS(port, tlsConfig)
	})
	if err != nil {
		return nil, err
	}
	err = start("ws", func(port int) (net.Addr, error) {
		return n.session.ListenWS(port, v.GetString("ws-path"))
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no listener enabled")
	}
	return out, nil
}

// serve runs the ambient services of the server role until ctx is done: admin service, health
// endpoint and consul registration.
func (n *node) serve(ctx context.Context, v *viper.Viper, listeners []network.Configuration) error {
	if port := v.GetInt("admin-port"); port >= 0 {
		lis, err := admin.Serve(n.logger, n.session, port)
		if err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			lis.Close()
		}()
	}
	if port := v.GetInt("health-port"); port >= 0 {
		go cli.ServeHTTPHealth(ctx, n.logger, port, n.health)
	}
	if service := v.GetString("consul-service"); service != "" {
		consul, err := discovery.NewConsul(n.session.ID(), n.logger)
		if err != nil {
			return err
		}
		for _, config := range listeners {
			if err := consul.Register(service, config); err != nil {
				return errors.Wrap(err, "failed to register in consul")
			}
		}
		go func() {
			<-ctx.Done()
			for _, config := range listeners {
				if err := consul.Deregister(service, config); err != nil {
					n.logger.Warn("failed to deregister from consul", zap.Error(err))
				}
			}
		}()
	}
	return nil
}

// loopback returns the local endpoint of a listener, for host mode.
func loopback(v *viper.Viper, listeners []network.Configuration) string {
	byName := map[string]network.Configuration{}
	for _, config := range listeners {
		byName[config.Name] = config
	}
	if config, ok := byName["tcp"]; ok {
		return net.JoinHostPort("127.0.0.1", strconv.Itoa(config.BindPort))
	}
	if config, ok := byName["ws"]; ok {
		return "ws://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(config.BindPort)) + v.GetString("ws-path")
	}
	return "tls://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(listeners[0].BindPort))
}
