package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/daoacct/service/cache"
)

func cacheListCommand() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List cached payload files",
		Action: func(c *cli.Context) error {
			store := cache.NewStore(c.String("cache-dir"), nil)
			names, err := store.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func cacheQueryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run a jq expression over a cached payload file",
		ArgsUsage: "CACHE_FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "jq",
				Aliases: []string{"q"},
				Value:   ".",
				Usage:   "jq expression applied to the cached JSON array",
			},
			&cli.BoolFlag{
				Name:    "compact",
				Aliases: []string{"c"},
				Usage:   "Compact instead of pretty-printed output",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("cache file path is required")
			}
			path := c.Args().Get(0)
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			var payload interface{}
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			code, err := compileJQ(c.String("jq"))
			if err != nil {
				return err
			}

			iter := code.Run(payload)
			for {
				v, ok := iter.Next()
				if !ok {
					break
				}
				if err, isErr := v.(error); isErr {
					return fmt.Errorf("jq evaluation failed: %w", err)
				}
				var out []byte
				if c.Bool("compact") {
					out, err = json.Marshal(v)
				} else {
					out, err = json.MarshalIndent(v, "", "  ")
				}
				if err != nil {
					return fmt.Errorf("failed to marshal result: %w", err)
				}
				fmt.Println(string(out))
			}
			return nil
		},
	}
}

func compileJQ(expr string) (*gojq.Code, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq expression %q: %w", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression %q: %w", expr, err)
	}
	return code, nil
}
