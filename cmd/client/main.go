package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"
)

func main() {
	url := flag.String("rpc", "http://127.0.0.1:8545", "ledger JSON-RPC endpoint")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: client [flags] root | spent <nullifier> | path <note-commitment> | submit <hex>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	method, params, err := request(flag.Args())
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := gethrpc.DialContext(ctx, *url)
	if err != nil {
		log.Fatal().Err(err).Str("rpc", *url).Msg("Failed to dial ledger")
	}
	defer client.Close()

	var result map[string]any
	if err := client.CallContext(ctx, &result, method, params...); err != nil {
		log.Fatal().Err(err).Str("method", method).Msg("Call failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}

// request maps a subcommand to its RPC method and parameters.
func request(args []string) (string, []any, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("missing command")
	}
	switch cmd := args[0]; {
	case cmd == "root" && len(args) == 1:
		return "cl_getRoot", nil, nil
	case cmd == "spent" && len(args) == 2:
		return "cl_isSpent", []any{args[1]}, nil
	case cmd == "path" && len(args) == 2:
		return "cl_getPath", []any{args[1]}, nil
	case cmd == "submit" && len(args) == 2:
		return "cl_submitBundle", []any{args[1]}, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q", cmd)
	}
}
