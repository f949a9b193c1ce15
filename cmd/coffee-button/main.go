// Command coffee-button watches a push button next to the coffee machine and
// tells the office when a fresh pot is on, when it has gone cold, and
// (on a triple press) shares a little coffee wisdom.
package main

import "log"

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
