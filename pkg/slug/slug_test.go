package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Şirket Kuruluşu", "sirket-kurulusu"},
		{"İSTANBUL Danışmanlık", "istanbul-danismanlik"},
		{"Constituição & Co.", "constituicao-and-co"},
		{"Asesoría Año Nuevo", "asesoria-ano-nuevo"},
		{"  Hello   World!  ", "hello-world"},
		{"---", ""},
		{"Acme GmbH (Straße 5)", "acme-gmbh-strasse-5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.in))
		})
	}
}
