package commanding

import (
	"fmt"
	"strings"
)

// parseSpec turns a form body into its spec dictionary: one key:value pair
// per line. A line with zero or more than one ':' is malformed.
func parseSpec(body string) (map[string]string, error) {
	lines := strings.Split(body, "\n")
	spec := make(map[string]string, len(lines))
	for _, line := range lines {
		if strings.Count(line, ":") != 1 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedBody, line)
		}
		key, value, _ := strings.Cut(line, ":")
		spec[key] = value
	}
	return spec, nil
}

func specLine(key, value string) string {
	return key + ":" + value
}

// sanitizeSpecValue makes an arbitrary string safe as a spec value: no
// newlines, and no ':' so the line keeps exactly one.
func sanitizeSpecValue(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, ":", ";")
}

func requireSpec(spec map[string]string, key string) (string, error) {
	value, ok := spec[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingSpecKey, key)
	}
	return value, nil
}
