package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanText: gerekçe / not metinlerini NFC'ye çevirip kırpar.
// Boşluk kontrolü her zaman temizlenmiş metin üzerinde yapılır.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
