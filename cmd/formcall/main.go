package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/formwire/formwire/internal/config"
	"github.com/formwire/formwire/internal/logging"
	"github.com/formwire/formwire/internal/session"
)

func main() {
	logging.ConfigureRuntime()
	addr := flag.String("addr", "localhost:9430", "server address")
	shape := flag.String("shape", "formwire.core", "command context shape name")
	codecName := flag.String("codec", "json", "appendix codec: json|gob|zstd-json|zstd-gob")
	configPath := flag.String("config", "", "optional client config; overrides addr and codec")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: formcall [flags] <command> [arg ...] [key=value ...]")
		os.Exit(2)
	}
	command := flag.Arg(0)
	pos, kw := parseArgs(flag.Args()[1:])

	sessionCfg := session.Config{}
	if *configPath != "" {
		cfg, err := config.LoadClientConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load client config")
		}
		*addr = cfg.Addr
		*codecName = cfg.Codec
		sessionCfg = config.ClientSession(cfg)
	}
	codec, err := config.BuildCodec(*codecName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build codec")
	}

	client, err := session.Dial(*addr, *shape, codec, sessionCfg)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("dial failed")
	}
	defer client.Close()

	if err := client.Validate(); err != nil {
		log.Fatal().Err(err).Msg("session validation failed")
	}
	value, err := client.Call(command, pos, kw)
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("call failed")
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("result not printable")
	}
	fmt.Println(string(out))
}

// parseArgs splits trailing arguments into positional and keyword sets.
// An argument with an '=' becomes a keyword pair. Values parse as JSON
// when they can and stay strings when they cannot.
func parseArgs(args []string) ([]any, map[string]any) {
	pos := make([]any, 0, len(args))
	kw := make(map[string]any)
	for _, arg := range args {
		if key, raw, found := strings.Cut(arg, "="); found && key != "" {
			kw[key] = parseValue(raw)
			continue
		}
		pos = append(pos, parseValue(arg))
	}
	return pos, kw
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
