// Command dishd serves the dish API.
//
//	dishd [serve] [--env-file FILE] [--host HOST] [--port PORT]
//	dishd healthcheck [--url URL] [--timeout 3s]
//	dishd settings [--format json|yaml]
//	dishd version
//
// Settings come from the environment and an optional .env file; see package
// config for the variables.
package main

import (
	"context"
	"fmt"
	"os"
)

const name = "dishd"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
