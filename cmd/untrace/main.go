// Command untrace inspects and smoke-tests an Untrace SDK setup.
//
// Usage:
//
//	# Print the configuration the SDK would use, with secrets masked
//	untrace config
//	untrace config --file untrace.yaml
//
//	# List LLM providers, their selection and detected credentials
//	untrace providers
//
//	# Send one test span to the configured endpoint
//	untrace ping
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
