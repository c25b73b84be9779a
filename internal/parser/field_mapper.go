package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Candidates ordered header aliases; earlier entries win.
type Candidates []string

// Header aliases accepted in registry and sales exports.
var (
	DealerCodeKeys     = Candidates{"CodigoRevendedor", "Codigo", "Código", "CODIGO"}
	DealerNameKeys     = Candidates{"NomeRevendedora", "NomeRevendedor", "Nome", "Revendedor"}
	RegistrySectorKeys = Candidates{"CodigoEstruturaComercial", "SetorId", "Setor", "Estrutura"}
	SalesSectorKeys    = Candidates{"Setor", "SetorId", "Estrutura"}
	SectorNameKeys     = Candidates{"EstruturaComercial", "SetorNome"}
	CycleKeys          = Candidates{"CicloFaturamento", "Ciclo"}
	AmountKeys         = Candidates{"ValorPraticado", "Valor", "Venda", "Total", "Faturamento"}
	RecordTypeKeys     = Candidates{"Tipo"}
	OfficialTierKeys   = Candidates{"Papel", "SegmentoAtual", "Segmento"}
)

// Lookup returns the first non-empty value whose header matches one of the
// candidates case-insensitively. Candidate order is priority order.
func Lookup(rec Record, keys Candidates) string {
	return lookup(rec, keys, foldHeader)
}

// LookupCompact is Lookup that also ignores whitespace inside header labels.
func LookupCompact(rec Record, keys Candidates) string {
	return lookup(rec, keys, func(s string) string {
		return foldHeader(NormalizeColumnName(s))
	})
}

// Has reports whether any header of rec matches one of the candidates.
func Has(rec Record, keys Candidates) bool {
	for _, h := range rec.Headers() {
		fh := foldHeader(h)
		for _, k := range keys {
			if fh == foldHeader(k) {
				return true
			}
		}
	}
	return false
}

func lookup(rec Record, keys Candidates, fold func(string) string) string {
	if rec == nil {
		return ""
	}
	headers := rec.Headers()
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = fold(h)
	}

	for _, k := range keys {
		fk := fold(k)
		for i, h := range headers {
			if folded[i] != fk {
				continue
			}
			if v := strings.TrimSpace(rec.Value(h)); v != "" {
				return v
			}
		}
	}
	return ""
}

// foldHeader puts a label in NFC before lower-casing so a decomposed "Código"
// from a Mac export equals the precomposed one.
func foldHeader(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
