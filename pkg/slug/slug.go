package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Latin letters used by the site's languages (Turkish, Portuguese, Spanish)
// folded to ASCII. Upper-case Turkish İ/I are handled before lowering.
var fold = strings.NewReplacer(
	"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u",
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o",
	"ú", "u", "ù", "u", "û", "u",
	"ñ", "n", "ß", "ss", "&", " and ",
)

// Generate creates a URL-friendly slug.
//
//	"Şirket Kuruluşu" -> "sirket-kurulusu"
//	"Constituição & Co." -> "constituicao-and-co"
//	"  Hello   World!  " -> "hello-world"
func Generate(name string) string {
	s := strings.NewReplacer("İ", "i", "I", "i").Replace(strings.TrimSpace(name))
	s = fold.Replace(strings.ToLower(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
