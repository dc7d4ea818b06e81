package network

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration locates one listener of the process: where it binds and how peers reach it.
type Configuration struct {
	Name              string
	BindPort          int
	AdvertisedAddress string
	AdvertisedPort    int
}

// Endpoint is the address peers should dial.
func (c Configuration) Endpoint() string {
	return net.JoinHostPort(c.AdvertisedAddress, fmt.Sprintf("%d", c.AdvertisedPort))
}

func (c Configuration) Describe() string {
	return fmt.Sprintf("%s listener is running on port %d and exposed on %s", c.Name, c.BindPort, c.Endpoint())
}

// Bound returns the configuration once the listener picked its port.
func (c Configuration) Bound(addr net.Addr) Configuration {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		c.BindPort = tcp.Port
		if c.AdvertisedPort == 0 {
			c.AdvertisedPort = tcp.Port
		}
	}
	return c
}

func advertisedAddressFlagName(name string) string {
	return fmt.Sprintf("%s-advertised-address", name)
}
func advertisedPortFlagName(name string) string {
	return fmt.Sprintf("%s-advertised-port", name)
}
func bindPortFlagName(name string) string {
	return fmt.Sprintf("%s-port", name)
}

func localPrivateHost() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1"
	}
	for _, v := range ifaces {
		if v.Flags&net.FlagLoopback == net.FlagLoopback || v.Flags&net.FlagUp != net.FlagUp {
			continue
		}
		addresses, _ := v.Addrs()
		for _, address := range addresses {
			if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return "127.0.0.1"
}

// RegisterFlags adds the flags describing the listener called name. A negative default port
// disables the listener unless the flag is set.
func RegisterFlags(cmd *cobra.Command, config *viper.Viper, name string, defaultPort int) {
	long := bindPortFlagName(name)
	advLong := advertisedPortFlagName(name)
	advLongAddr := advertisedAddressFlagName(name)

	cmd.Flags().IntP(long, "", defaultPort, fmt.Sprintf("Start %s listener on this port", name))
	config.BindPFlag(long, cmd.Flags().Lookup(long))

	cmd.Flags().StringP(advLongAddr, "", localPrivateHost(), fmt.Sprintf("Advertise %s listener on this address", name))
	config.BindPFlag(advLongAddr, cmd.Flags().Lookup(advLongAddr))

	cmd.Flags().IntP(advLong, "", 0, fmt.Sprintf("Advertise %s listener on this port", name))
	config.BindPFlag(advLong, cmd.Flags().Lookup(advLong))
}

// ConfigurationFromFlags reads the configuration of the listener called name. It returns false
// when the listener is disabled.
func ConfigurationFromFlags(v *viper.Viper, name string) (Configuration, bool, error) {
	config := Configuration{
		Name:              name,
		BindPort:          v.GetInt(bindPortFlagName(name)),
		AdvertisedAddress: v.GetString(advertisedAddressFlagName(name)),
		AdvertisedPort:    v.GetInt(advertisedPortFlagName(name)),
	}
	if config.BindPort < 0 {
		return config, false, nil
	}
	if config.BindPort > 65535 {
		return config, false, errors.Errorf("invalid port specified for %s listener: %d", name, config.BindPort)
	}
	if config.AdvertisedPort < 0 || config.AdvertisedPort > 65535 {
		return config, false, errors.Errorf("invalid advertised port specified for %s listener: %d", name, config.AdvertisedPort)
	}
	if config.AdvertisedPort == 0 {
		config.AdvertisedPort = config.BindPort
	}
	if net.ParseIP(config.AdvertisedAddress) == nil {
		return config, false, errors.Errorf("invalid advertised address specified for %s listener: %q", name, config.AdvertisedAddress)
	}
	return config, true, nil
}
