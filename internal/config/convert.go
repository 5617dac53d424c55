package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/formwire/formwire/internal/protocol/form"
	"github.com/formwire/formwire/internal/session"
)

// BuildCodec maps a config codec name to the appendix codec it names.
func BuildCodec(name string) (form.Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return form.JSONCodec{}, nil
	case "gob":
		return form.GobCodec{}, nil
	case "zstd-json":
		return form.NewZstdCodec(form.JSONCodec{})
	case "zstd-gob":
		return form.NewZstdCodec(form.GobCodec{})
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}

func ServerSession(cfg ServerConfig) session.Config {
	return session.Config{
		Separator:      cfg.Separator,
		AckTimeout:     time.Duration(cfg.AckTimeoutMS) * time.Millisecond,
		ReceiveTimeout: time.Duration(cfg.ReceiveTimeoutMS) * time.Millisecond,
		LineLimit:      cfg.LineLimit,
	}
}

func ClientSession(cfg ClientConfig) session.Config {
	return session.Config{
		Separator:      cfg.Separator,
		AckTimeout:     time.Duration(cfg.AckTimeoutMS) * time.Millisecond,
		ReceiveTimeout: time.Duration(cfg.ReceiveTimeoutMS) * time.Millisecond,
		LineLimit:      cfg.LineLimit,
	}
}
