package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmorales/puntoventa-api/pkg/textutil"
)

func TestFold_QuitaAcentosYBajaMayusculas(t *testing.T) {
	cases := map[string]string{
		"Crédito":      "credito",
		"José RAMÍREZ": "jose ramirez",
		"ñandú":        "nandu",
		"sin acentos":  "sin acentos",
		"":             "",
		"ÁÉÍÓÚ äëïöü":  "aeiou aeiou",
	}
	for in, want := range cases {
		assert.Equal(t, want, textutil.Fold(in), "Fold(%q)", in)
	}
}

func TestContainsFold(t *testing.T) {
	assert.True(t, textutil.ContainsFold("José Ramírez", "jose"))
	assert.True(t, textutil.ContainsFold("José Ramírez", "RAMIREZ"))
	assert.True(t, textutil.ContainsFold("credito", "Crédi"))
	assert.False(t, textutil.ContainsFold("Pedro Luna", "jose"))
}
