// Command prism is the AI search gateway. `prism serve` runs the HTTP API;
// the remaining subcommands exercise the same pipeline from the terminal.
package main
