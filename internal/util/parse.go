package util

import (
	"strconv"
)

// ParseIntParam parses a string to an integer, returning an error if parsing fails
func ParseIntParam(s string) (int, error) {
	return strconv.Atoi(s)
}
