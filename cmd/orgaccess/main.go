package main

import (
	"log"

	"github.com/bramblewood/orgaccess/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
