// Command httpx-dump reads YAML request fixtures and prints each request
// in HTTP/1.1 wire form.
//
//	httpx-dump [-v] fixture.yaml...
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"dqx0.com/go/httpmsg/httpx"
	"dqx0.com/go/httpmsg/internal/obs"
)

func main() {
	args := os.Args[1:]
	level := zerolog.InfoLevel
	if len(args) > 0 && args[0] == "-v" {
		level = zerolog.DebugLevel
		args = args[1:]
	}
	log := obs.ZerologLogger{
		L:         zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger(),
		Component: "httpx-dump",
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: httpx-dump [-v] fixture.yaml...")
		os.Exit(2)
	}
	failed := false
	for _, path := range args {
		if err := dump(path, log); err != nil {
			log.Logf(obs.Error, "%s: %v", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func dump(path string, log obs.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	req, err := httpx.LoadRequest(f, filepath.Dir(path))
	if err != nil {
		return err
	}
	defer req.Body().Close()
	log.Logf(obs.Debug, "loaded %s %s with %d headers", req.Method(), req.RequestTarget(), len(req.HeaderNames()))
	n, err := req.WriteTo(os.Stdout)
	if err != nil {
		return err
	}
	log.Logf(obs.Debug, "wrote %d bytes", n)
	fmt.Println()
	return nil
}
