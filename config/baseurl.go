package config

import (
	"os"
	"strings"

	"github.com/yshengliao/antoree/pkg/httpclient"
)

// EnvPublicAPIURL is honored ahead of any configured URL so deployments
// can point the client elsewhere without a config file.
const EnvPublicAPIURL = "NEXT_PUBLIC_API_URL"

// ResolveBaseURL picks the backend URL in order: the NEXT_PUBLIC_API_URL
// environment variable, baseURL, origin + "/api", and finally
// httpclient.DefaultBaseURL. Trailing slashes are trimmed.
func ResolveBaseURL(baseURL, origin string) string {
	if v := strings.TrimSpace(os.Getenv(EnvPublicAPIURL)); v != "" {
		return strings.TrimRight(v, "/")
	}
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/")
	}
	if origin != "" {
		return strings.TrimRight(origin, "/") + "/api"
	}
	return httpclient.DefaultBaseURL
}
