// The main package for the careers-crawler executable.
package main

import (
	"context"
	"os"

	"github.com/JakeFAU/careers-crawler/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background(), os.Args[1:]))
}
