package utils

import "github.com/google/uuid"

// GenID returns a new durable record id. Clients may use any temporary id
// for optimistic placeholders; durable ids always come from here.
func GenID() string {
	return uuid.NewString()
}
