// Command admintoken prints a fresh admin API token and the bcrypt hash to
// put in ADMIN_API_TOKEN, so the plaintext never sits in the environment.
package main

import (
	"fmt"
	"os"

	"academy/pkg/platform/secrets"
)

func main() {
	token, err := secrets.Generate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	hash, err := secrets.Hash(token)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("token: %s\nADMIN_API_TOKEN=%s\n", token, hash)
}
