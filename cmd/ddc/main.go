// Command ddc is the command-line driver for the parser: it exposes
// `parse`, `fmt-check`, and `watch` over one or more D-like source files.
package main

func main() {
	Execute()
}
