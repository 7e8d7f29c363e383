package main

import (
	"fmt"
	"log"
	"os"

	"github.com/playmatatu/billiards/internal/admin"
)

// Prints the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hash-password <password>")
		os.Exit(2)
	}

	hashed, err := admin.HashPassword(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(hashed)
	log.Println("Set ADMIN_PASSWORD_HASH to the value above")
}
