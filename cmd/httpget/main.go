// Command httpget is a minimal CLI wrapper around httpclient.Get,
// grounded on the teacher's example_test.go usage pattern (ExampleClient:
// build a request, run it, print the body).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/epogrebnyak/httpclient"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: httpget <url>")
		os.Exit(2)
	}

	body, err := httpclient.Get(context.Background(), os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "httpget:", err)
		os.Exit(1)
	}
	os.Stdout.Write(body)
}
