package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "server":
		return serverTemplate, nil
	case "client":
		return clientTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serverTemplate = `name = "formd"
addr = ":9430"
metrics_addr = ":9431"
codec = "json"
separator = "$separation$"
ack_timeout_ms = 10000
receive_timeout_ms = 10000
request_rate = 0.0
request_burst = 1
`

const clientTemplate = `addr = "localhost:9430"
codec = "json"
separator = "$separation$"
ack_timeout_ms = 10000
receive_timeout_ms = 10000
`
