// Command soundcheck inspects the sound content the game ships with: clip
// lengths, playlist integrity and the order the ambient rotation would pick.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
