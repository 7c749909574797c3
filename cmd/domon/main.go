package main

import (
	"os"

	"github.com/MrSnakeDoc/domon/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
