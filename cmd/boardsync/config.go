package main

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vx-labs/boardsync/session"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BOARDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func bind(cmd *cobra.Command, v *viper.Viper, names ...string) {
	for _, name := range names {
		v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}

// addSessionFlags registers the flags every session shares.
func addSessionFlags(cmd *cobra.Command, v *viper.Viper) {
	defaults := session.DefaultConfig()
	cmd.Flags().StringP("name", "n", defaults.Name, "Participant name announced to the server")
	cmd.Flags().Duration("tick-interval", defaults.TickInterval, "Interval between two ticks of the replication loop")
	cmd.Flags().Int("send-queue-depth", defaults.SendQueueDepth, "Frames a connection may queue before it is considered dead")
	cmd.Flags().Duration("gap-timeout", defaults.GapTimeout, "How long a sequence gap may stay open before the connection is dropped")
	cmd.Flags().Int("max-buffered", defaults.MaxBuffered, "Out of order packets kept per connection")
	cmd.Flags().Duration("handshake-timeout", defaults.HandshakeTimeout, "Handshake deadline")
	bind(cmd, v, "name", "tick-interval", "send-queue-depth", "gap-timeout", "max-buffered", "handshake-timeout")
}

func sessionConfig(v *viper.Viper) session.Config {
	return session.Config{
		Name:             v.GetString("name"),
		Token:            v.GetString("token"),
		TokenKey:         v.GetString("token-key"),
		TickInterval:     v.GetDuration("tick-interval"),
		SendQueueDepth:   v.GetInt("send-queue-depth"),
		GapTimeout:       v.GetDuration("gap-timeout"),
		MaxBuffered:      v.GetInt("max-buffered"),
		HandshakeTimeout: v.GetDuration("handshake-timeout"),
		MaxConnections:   v.GetInt("max-connections"),
	}
}

func clientTLSConfig(v *viper.Viper) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: v.GetBool("tls-insecure-skip-verify"),
		MinVersion:         tls.VersionTLS12,
	}
}

const handshakeGrace = 10 * time.Second
