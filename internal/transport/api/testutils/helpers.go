package testutils

import "strings"

// OverBytesUnderRunes строка из count рун, каждая из которых занимает 4 байта.
func OverBytesUnderRunes(count int) string {
	return strings.Repeat("😁", count)
}
