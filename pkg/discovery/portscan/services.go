package portscan

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// defaultServiceNames maps the candidate ports to their conventional service
// names, shown next to each open port in rendered output
var defaultServiceNames = map[int]string{
	80:   "HTTP",
	443:  "HTTPS",
	22:   "SSH",
	21:   "FTP",
	3389: "RDP",
	8080: "HTTP-Proxy",
	1723: "PPTP",
}

// ServiceNames resolves port numbers to display names
type ServiceNames map[int]string

// DefaultServiceNames returns the built-in port-to-service mapping
func DefaultServiceNames() ServiceNames {
	names := make(ServiceNames, len(defaultServiceNames))
	for port, name := range defaultServiceNames {
		names[port] = name
	}
	return names
}

// Lookup returns the service name for port, or "Unknown"
func (s ServiceNames) Lookup(port int) string {
	if name, ok := s[port]; ok {
		return name
	}
	return "Unknown"
}

// LoadServiceNames parses a user-supplied JSON service database of the form
// {"80": "HTTP", "8443": "HTTPS-Alt"} and overlays it on the defaults.
// Entries with non-numeric keys or non-string values are rejected.
func LoadServiceNames(data []byte) (ServiceNames, error) {
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("service database must be a JSON object")
	}

	names := DefaultServiceNames()
	var parseErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		port, err := strconv.Atoi(key.String())
		if err != nil || port <= 0 || port > 65535 {
			parseErr = fmt.Errorf("invalid port %q in service database", key.String())
			return false
		}
		if value.Type != gjson.String {
			parseErr = fmt.Errorf("service name for port %d must be a string", port)
			return false
		}
		names[port] = value.String()
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return names, nil
}
