// ./main.go
package main

import (
	"github.com/xkilldash9x/extjswd/cmd"
)

// main is the entry point for the extjswd CLI.
func main() {
	cmd.Execute()
}
