package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/formwire/formwire/internal/commanding"
)

var startedAt = time.Now()

// coreContext builds the registry every formd instance serves.
func coreContext() *commanding.Context {
	ctx := commanding.NewContext("formwire.core")
	register(ctx, "ping", func(pos []any, kw map[string]any) (any, error) {
		return "pong", nil
	})
	register(ctx, "echo", func(pos []any, kw map[string]any) (any, error) {
		if len(pos) == 1 {
			return pos[0], nil
		}
		return pos, nil
	})
	register(ctx, "uptime", func(pos []any, kw map[string]any) (any, error) {
		return time.Since(startedAt).String(), nil
	})
	register(ctx, "sum", func(pos []any, kw map[string]any) (any, error) {
		total := 0.0
		for _, v := range pos {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("sum: %v is not a number", v)
			}
			total += f
		}
		return total, nil
	})
	register(ctx, "commands", func(pos []any, kw map[string]any) (any, error) {
		return ctx.Commands(), nil
	})
	return ctx
}

func register(ctx *commanding.Context, name string, h commanding.Handler) {
	if err := ctx.Register(name, h); err != nil {
		log.Fatal().Err(err).Str("command", name).Msg("core context registration failed")
	}
}
