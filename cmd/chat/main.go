// Package main provides the chat CLI entry point.
// chat keeps a conversation history under ~/.chatgpt and sends it, with a new prompt,
// to a chat-completion endpoint.
package main

import (
	"os"

	"chatgpt/internal/output"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		output.NewPrinter(output.WithErrorWriter(cmd.ErrOrStderr())).Error(err.Error())
		os.Exit(1)
	}
}
