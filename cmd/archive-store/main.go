package main

import (
	"os"

	"github.com/noah-isme/teacher-archive/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
