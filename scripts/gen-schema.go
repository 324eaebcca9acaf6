//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/tourwright/tourwright/pkg/tour"
)

func main() {
	data, err := tour.GenerateJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/tour-v1.json", data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/tour-v1.json")
}
