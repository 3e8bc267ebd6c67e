package main

import (
	"log"

	"github.com/careerflow/careerflow-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
