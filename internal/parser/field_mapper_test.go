package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_CaseInsensitive(t *testing.T) {
	t.Parallel()

	rec := MapRecord{"codigorevendedor": " 77 "}
	assert.Equal(t, "77", Lookup(rec, DealerCodeKeys))
}

func TestLookup_CandidateOrderIsPriority(t *testing.T) {
	t.Parallel()

	rec := MapRecord{"Codigo": "1", "CodigoRevendedor": "2"}
	assert.Equal(t, "2", Lookup(rec, DealerCodeKeys))
}

func TestLookup_SkipsEmptyValues(t *testing.T) {
	t.Parallel()

	rec := MapRecord{"CodigoRevendedor": "  ", "Codigo": "5"}
	assert.Equal(t, "5", Lookup(rec, DealerCodeKeys))

	row := NewRow([]string{"Valor", "valor"}, map[string]string{"Valor": "", "valor": "3"})
	assert.Equal(t, "3", Lookup(row, AmountKeys))
}

func TestLookup_Missing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Lookup(MapRecord{"Outro": "x"}, CycleKeys))
	assert.Equal(t, "", Lookup(nil, CycleKeys))
}

func TestLookupCompact_IgnoresInnerWhitespace(t *testing.T) {
	t.Parallel()

	rec := MapRecord{"Codigo Revendedor": "9"}
	assert.Equal(t, "", Lookup(rec, DealerCodeKeys))
	assert.Equal(t, "9", LookupCompact(rec, DealerCodeKeys))
}

func TestLookup_UnicodeNormalization(t *testing.T) {
	t.Parallel()

	decomposed := "Co\u0301digo"
	rec := MapRecord{decomposed: "12"}
	assert.Equal(t, "12", Lookup(rec, Candidates{"CÓDIGO"}))
}

func TestHas(t *testing.T) {
	t.Parallel()

	rec := MapRecord{"TIPO": ""}
	assert.True(t, Has(rec, RecordTypeKeys))
	assert.False(t, Has(rec, CycleKeys))
}
