package utils

import (
	"strings"
)

var plateTextReplacer = strings.NewReplacer(
	"(", "",
	")", "",
	",", "",
	"]", "",
	"-", " ",
)

// NormalizePlate cleans recognized text before it is stored. Every other
// character, including internal whitespace, is kept as is.
func NormalizePlate(raw string) string {
	return plateTextReplacer.Replace(raw)
}

// PlateKey is the lookup form of a plate: no whitespace, no dashes, upper case.
func PlateKey(raw string) string {
	key := strings.TrimSpace(raw)
	key = strings.Join(strings.Fields(key), "")
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ToUpper(key)
	return key
}
