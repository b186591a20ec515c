package prompts

import (
	"strings"
	"testing"
)

func TestFormatSeverityPrompt(t *testing.T) {
	lat, lng := -23.55, -46.63
	prompt := FormatSeverityPrompt(
		"Descarte irregular de resíduos químicos no rio",
		"AMBIENTAL",
		"2026-03-15T14:30:00Z",
		&lat, &lng,
		"Usuário com 5 denúncias: 4 verificadas, 1 rejeitadas",
	)

	for _, fragment := range []string{
		"Descarte irregular de resíduos químicos no rio",
		"Categoria: AMBIENTAL",
		"2026-03-15T14:30:00Z",
		"Latitude: -23.55, Longitude: -46.63",
		"4 verificadas",
		"categoria AMBIENTAL. Considere especialmente",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}

	// Category guidance must lead the prompt.
	if !strings.HasPrefix(prompt, "Esta denúncia é da categoria AMBIENTAL") {
		t.Errorf("prompt does not start with category guidance: %q", prompt[:60])
	}
}

func TestFormatSeverityPromptDefaults(t *testing.T) {
	prompt := FormatSeverityPrompt("Reclamação sobre atendimento", "OUTROS", "", nil, nil, "")

	for _, fragment := range []string{
		"Data/Hora: Não informado",
		"Localização: Não informada",
		"Histórico do Usuário: Não disponível",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing default %q", fragment)
		}
	}

	// Unknown categories get the base prompt only.
	if !strings.HasPrefix(prompt, "Você é um especialista") {
		t.Errorf("unexpected prefix for unguided category: %q", prompt[:40])
	}
}

func TestFormatSeverityPromptGuidanceCaseInsensitive(t *testing.T) {
	prompt := FormatSeverityPrompt("Ameaça com arma", "violencia", "", nil, nil, "")
	if !strings.HasPrefix(prompt, "Esta denúncia é da categoria VIOLÊNCIA") {
		t.Error("lowercase category did not select its guidance")
	}
}
