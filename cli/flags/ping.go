package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag names.
const (
	services         = "services"
	clientCACertPath = "clientCACertPath"
	tlsInsecure      = "tlsInsecure"
)

// ping flags
var (
	Services         []string
	ClientCACertPath []string
	TLSInsecure      bool
)

func SetPingFlags(cmd *cobra.Command) {
	AddPersistentStringSliceFlag(cmd, services, []string{}, "Proof service URLs to check, e.g. http://localhost:3030", false)
	AddPersistentStringSliceFlag(cmd, clientCACertPath, []string{}, "Path to CA certificates used to verify the services", false)
	AddPersistentBoolFlag(cmd, tlsInsecure, false, "Accept any TLS certificate presented by the services", false)
}

// BindPingFlags binds flags to yaml config parameters for the service health check
func BindPingFlags(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, services, clientCACertPath, tlsInsecure); err != nil {
		return err
	}
	Services = uniqueURLs(viper.GetStringSlice(services))
	if len(Services) == 0 {
		return fmt.Errorf("😥 at least one service URL is required")
	}
	ClientCACertPath = viper.GetStringSlice(clientCACertPath)
	TLSInsecure = viper.GetBool(tlsInsecure)
	return nil
}

// uniqueURLs drops empty and repeated service URLs, ignoring a trailing slash.
func uniqueURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSuffix(strings.TrimSpace(u), "/")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
