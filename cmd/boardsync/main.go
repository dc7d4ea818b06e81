package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vx-labs/boardsync/auth"
	"github.com/vx-labs/boardsync/cli"
	"github.com/vx-labs/boardsync/discovery"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:   "boardsync",
		Short: "Collaborative board editing server and client",
	}
	root.AddCommand(Serve())
	root.AddCommand(Host())
	root.AddCommand(Join())
	root.AddCommand(Token())
	root.Execute()
}

func Serve() *cobra.Command {
	v := newViper()
	c := &cobra.Command{
		Use:   "serve",
		Short: "Accept participants and relay their edits",
		Run: func(cmd *cobra.Command, args []string) {
			logger := cli.Bootstrap(zap.String("command", "serve"))
			defer logger.Sync()
			n, err := newNode(logger, sessionConfig(v))
			if err != nil {
				logger.Fatal("failed to create session", zap.Error(err))
			}
			ctx, cancel := cli.SignalContext(logger)
			defer cancel()
			listeners, err := n.listen(v)
			if err != nil {
				logger.Fatal("failed to start listeners", zap.Error(err))
			}
			if err := n.serve(ctx, v, listeners); err != nil {
				logger.Fatal("failed to start services", zap.Error(err))
			}
			n.session.Run(ctx)
			n.session.Shutdown()
		},
	}
	addSessionFlags(c, v)
	addServerFlags(c, v)
	return c
}

func Host() *cobra.Command {
	v := newViper()
	c := &cobra.Command{
		Use:   "host",
		Short: "Accept participants and edit boards from this terminal",
		Run: func(cmd *cobra.Command, args []string) {
			logger := cli.Bootstrap(zap.String("command", "host"))
			defer logger.Sync()
			config := sessionConfig(v)
			config.TLS = clientTLSConfig(v)
			if config.TokenKey != "" {
				token, err := auth.EncodeJoinToken(config.TokenKey, config.Name, auth.DefaultTTL)
				if err != nil {
					logger.Fatal("failed to sign local join token", zap.Error(err))
				}
				config.Token = token
			}
			n, err := newNode(logger, config)
			if err != nil {
				logger.Fatal("failed to create session", zap.Error(err))
			}
			ctx, cancel := cli.SignalContext(logger)
			defer cancel()
			listeners, err := n.listen(v)
			if err != nil {
				logger.Fatal("failed to start listeners", zap.Error(err))
			}
			if err := n.serve(ctx, v, listeners); err != nil {
				logger.Fatal("failed to start services", zap.Error(err))
			}
			go n.session.Run(ctx)
			connectCtx, connectCancel := context.WithTimeout(ctx, handshakeGrace)
			err = n.session.Connect(connectCtx, loopback(v, listeners))
			connectCancel()
			if err != nil {
				logger.Fatal("failed to join local server", zap.Error(err))
			}
			n.prompt(ctx)
			cancel()
			n.session.Shutdown()
		},
	}
	addSessionFlags(c, v)
	addServerFlags(c, v)
	c.Flags().Bool("tls-insecure-skip-verify", true, "Skip certificate verification when joining the local TLS listener")
	bind(c, v, "tls-insecure-skip-verify")
	return c
}

func Join() *cobra.Command {
	v := newViper()
	c := &cobra.Command{
		Use:   "join [endpoint...]",
		Short: "Join a server and edit boards from this terminal",
		Run: func(cmd *cobra.Command, args []string) {
			logger := cli.Bootstrap(zap.String("command", "join"))
			defer logger.Sync()
			config := sessionConfig(v)
			config.TLS = clientTLSConfig(v)
			n, err := newNode(logger, config)
			if err != nil {
				logger.Fatal("failed to create session", zap.Error(err))
			}
			ctx, cancel := cli.SignalContext(logger)
			defer cancel()
			candidates := args
			if service := v.GetString("consul-service"); service != "" {
				consul, err := discovery.NewConsul(n.session.ID(), logger)
				if err != nil {
					logger.Fatal("failed to create consul client", zap.Error(err))
				}
				discovered, err := consul.WaitCandidates(ctx, service)
				if err != nil {
					logger.Fatal("failed to discover servers", zap.Error(err))
				}
				candidates = append(candidates, discovered...)
			}
			go n.session.Run(ctx)
			connectCtx, connectCancel := context.WithTimeout(ctx, handshakeGrace)
			err = n.session.Connect(connectCtx, candidates...)
			connectCancel()
			if err != nil {
				logger.Fatal("failed to join server", zap.Error(err))
			}
			n.prompt(ctx)
			cancel()
			n.session.Shutdown()
		},
	}
	addSessionFlags(c, v)
	c.Flags().StringP("token", "t", "", "Join token presented to the server")
	c.Flags().String("consul-service", "", "Discover servers registered in consul under this service name")
	c.Flags().Bool("tls-insecure-skip-verify", false, "Skip server certificate verification")
	bind(c, v, "token", "consul-service", "tls-insecure-skip-verify")
	return c
}

func Token() *cobra.Command {
	v := newViper()
	c := &cobra.Command{
		Use:   "token <participant>",
		Short: "Sign a join token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := v.GetString("token-key")
			if key == "" {
				return errors.New("--token-key is required")
			}
			token, err := auth.EncodeJoinToken(key, args[0], v.GetDuration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	c.Flags().String("token-key", "", "Signing key shared with the server")
	c.Flags().Duration("ttl", auth.DefaultTTL, "Token validity")
	bind(c, v, "token-key", "ttl")
	return c
}
