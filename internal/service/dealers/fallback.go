package dealers

import "github.com/eduardocaduuu/SupervisionDash/internal/model"

// DefaultBlockedCodes management codes that must not be used as sector ids
var DefaultBlockedCodes = []string{"13706", "13707"}

// FallbackSectors served while no registry file is available
var FallbackSectors = []model.Sector{
	{ID: "1414", Name: "SUPERVISORA DE RELACIONAMENTO"},
	{ID: "1415", Name: "PRATA 2 / Coruripe / Piaçabuçu / F. Deserto / São Sebastião /"},
	{ID: "3124", Name: "BRONZE / Todas as cidades 13707"},
	{ID: "4005", Name: "PLATINA & OURO / Palmeira / Igaci /Major / Cacimbinhas / Estrela / Minador / Quebrangulo /"},
	{ID: "8238", Name: "PRATA 2 / Major / Cacimbinhas / Estrela / Quebrangulo / Minador /"},
	{ID: "8239", Name: "SUPERVISORA DE RELACIONAMENTO PALMEIRA DOS INDIOS"},
	{ID: "8317", Name: "BRONZE 2 / Todas as cidades 13707"},
	{ID: "9540", Name: "PLATINA / Penedo /"},
	{ID: "14210", Name: "FVC - 13706 - A - ALCINA MARIA 1"},
	{ID: "14211", Name: "FVC - 13707 - A - ALCINA MARIA 1"},
	{ID: "14244", Name: "PRATA 3 / I.Nova / Junqueiro / Olho D' Agua / Porto Real / São Brás / Teotônio"},
	{ID: "14245", Name: "PRATA 1 / Penedo /"},
	{ID: "14246", Name: "OURO / Penedo /"},
	{ID: "15242", Name: "FVC - 13707 - A - ALCINA MARIA 2"},
	{ID: "15774", Name: "INICIOS CENTRAL 13707"},
	{ID: "15775", Name: "INICIOS CENTRAL 13706"},
	{ID: "16283", Name: "FVC - 13706- BER - ALCINA MARIA"},
	{ID: "16284", Name: "FVC - 13707- BER - ALCINA MARIA"},
	{ID: "16289", Name: "FVC - 13706 - A - ALCINA MARIA 2"},
	{ID: "16471", Name: "Setor Multimarcas - PALMEIRA DOS INDIOS - CP ALCINA MARIA"},
	{ID: "16472", Name: "Setor Multimarcas - PENEDO - CP ALCINA MARIA"},
	{ID: "16635", Name: "FVC - 13707 - A - ALCINA MARIA 3"},
	{ID: "17539", Name: "PLATINA / Palmeira /"},
	{ID: "18787", Name: "FVC - 13706 - ALCINA MARIA REINÍCIOS"},
	{ID: "18788", Name: "FVC - 13707 - ALCINA MARIA REINÍCIOS"},
	{ID: "23032", Name: "BRONZE / Todas as cidades 13706"},
	{ID: "23336", Name: "SETOR PADRÃO 13706"},
	{ID: "23557", Name: "SETOR PADRÃO 13707"},
}
