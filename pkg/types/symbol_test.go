package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolValidate(t *testing.T) {
	valid := Symbol{Name: "Run", QualifiedName: "sample.Run", Kind: KindFunction, LineStart: 1, LineEnd: 3}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	assert.ErrorIs(t, noName.Validate(), ErrInvalidSymbol)

	badKind := valid
	badKind.Kind = "bogus"
	assert.ErrorIs(t, badKind.Validate(), ErrInvalidSymbol)

	badLines := valid
	badLines.LineStart = 5
	badLines.LineEnd = 2
	assert.ErrorIs(t, badLines.Validate(), ErrInvalidSymbol)
}

func TestSymbolEmbeddingTextTruncates(t *testing.T) {
	s := Symbol{
		QualifiedName: "sample.Run",
		Signature:     "func Run()",
		Documentation: "Run starts the loop and keeps going for a very long time indeed",
	}
	text := s.EmbeddingText(20)
	require.Len(t, text, 20)
	assert.Equal(t, "sample.Run\nfunc Run(", text)
}

func TestSymbolRecordToMap(t *testing.T) {
	r := &SymbolRecord{ID: 1, Name: "Run", QualifiedName: "sample.Run", Kind: KindFunction}
	m := r.ToMap()
	assert.Equal(t, int64(1), m["id"])
	assert.Equal(t, "function", m["kind"])
}
