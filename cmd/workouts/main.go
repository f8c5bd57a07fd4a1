// Command workouts logs and inspects running and cycling activities stored in
// the local persistence slot.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		log.SetFlags(0)
		log.Printf("workouts: %v", err)
		os.Exit(1)
	}
}
