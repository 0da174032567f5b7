// Command datagraphctl inspects the graph straight from Neo4j using the same
// configuration as the API.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
