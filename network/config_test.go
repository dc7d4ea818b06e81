package network

import (
	"net"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestConfigurationFromFlags(t *testing.T) {
	setup := func(args ...string) *viper.Viper {
		v := viper.New()
		cmd := &cobra.Command{Use: "test"}
		RegisterFlags(cmd, v, "tcp", 1883)
		RegisterFlags(cmd, v, "ws", -1)
		require.NoError(t, cmd.ParseFlags(args))
		return v
	}
	t.Run("defaults", func(t *testing.T) {
		config, enabled, err := ConfigurationFromFlags(setup(), "tcp")
		require.NoError(t, err)
		require.True(t, enabled)
		require.Equal(t, 1883, config.BindPort)
		require.Equal(t, 1883, config.AdvertisedPort)
		_, enabled, err = ConfigurationFromFlags(setup(), "ws")
		require.NoError(t, err)
		require.False(t, enabled)
	})
	t.Run("advertised endpoint", func(t *testing.T) {
		config, _, err := ConfigurationFromFlags(setup("--ws-port", "8080", "--ws-advertised-address", "10.0.0.1", "--ws-advertised-port", "443"), "ws")
		require.NoError(t, err)
		require.Equal(t, "10.0.0.1:443", config.Endpoint())
	})
	t.Run("invalid address", func(t *testing.T) {
		_, _, err := ConfigurationFromFlags(setup("--tcp-advertised-address", "nope"), "tcp")
		require.Error(t, err)
	})
	t.Run("random port", func(t *testing.T) {
		config, _, err := ConfigurationFromFlags(setup("--tcp-port", "0", "--tcp-advertised-address", "127.0.0.1"), "tcp")
		require.NoError(t, err)
		config = config.Bound(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 4242})
		require.Equal(t, "127.0.0.1:4242", config.Endpoint())
	})
}
