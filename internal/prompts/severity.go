// Package prompts centralizes the LLM prompts for severity analysis so they
// can be tuned without touching service code.
package prompts

import (
	"fmt"
	"strings"
)

const severityAnalysisPrompt = `Você é um especialista em análise de denúncias e classificação de severidade para sistema de ouvidoria pública.

Sua tarefa é analisar a denúncia fornecida e classificar sua severidade em uma das categorias:
- CRITICA: Situações que envolvem risco iminente à vida, crimes graves, emergências
- ALTA: Crimes significativos, violações sérias de direitos, situações de risco
- MEDIA: Infrações moderadas, problemas administrativos sérios, irregularidades
- BAIXA: Questões administrativas menores, reclamações de serviços, problemas rotineiros

DADOS DA DENÚNCIA:
Descrição: %s
Categoria: %s
Data/Hora: %s
Localização: %s
Histórico do Usuário: %s

CRITÉRIOS DE ANÁLISE:
1. GRAVIDADE DOS FATOS: Avalie a natureza e gravidade dos fatos relatados
2. URGÊNCIA: Considere se a situação requer ação imediata
3. IMPACTO SOCIAL: Analise o potencial impacto na sociedade ou comunidade
4. RISCO: Identifique riscos à segurança, saúde ou direitos
5. CATEGORIA: Considere o peso da categoria da denúncia
6. CREDIBILIDADE: Avalie a credibilidade baseada no histórico do usuário

FORMATO DE RESPOSTA (JSON):
{
    "severidade": "CRITICA|ALTA|MEDIA|BAIXA",
    "pontuacao": float_entre_0_e_10,
    "fatores_identificados": ["lista de fatores que influenciaram a classificação"],
    "palavras_chave": ["palavras-chave relevantes encontradas"],
    "justificativa": "explicação detalhada da classificação",
    "urgencia": "EMERGENCIAL|ALTA|MEDIA|BAIXA",
    "confianca": float_entre_0_e_1
}

Responda APENAS com o objeto JSON, sem texto adicional.`

// Category-specific guidance prepended to the base prompt.
var categoryGuidance = map[string]string{
	"VIOLENCIA": `Esta denúncia é da categoria VIOLÊNCIA. Considere especialmente:
- Tipo e intensidade da violência relatada
- Presença de armas ou ameaças
- Número de pessoas envolvidas
- Vulnerabilidade das vítimas

`,
	"CORRUPCAO": `Esta denúncia é da categoria CORRUPÇÃO. Considere especialmente:
- Valor monetário envolvido
- Nível hierárquico dos envolvidos
- Impacto no serviço público
- Evidências apresentadas

`,
	"TRAFICO": `Esta denúncia é da categoria TRÁFICO. Considere especialmente:
- Tipo de substância/material
- Escala da operação
- Proximidade de escolas/hospitais
- Envolvimento de menores

`,
	"AMBIENTAL": `Esta denúncia é da categoria AMBIENTAL. Considere especialmente:
- Extensão do dano ambiental
- Reversibilidade dos danos
- Impacto na saúde pública
- Recorrência da infração

`,
}

// FormatSeverityPrompt builds the severity analysis prompt. The reporter
// history string carries aggregate counts only, never identities.
func FormatSeverityPrompt(description, category, occurredAt string, latitude, longitude *float64, reporterHistory string) string {
	if occurredAt == "" {
		occurredAt = "Não informado"
	}
	location := "Não informada"
	if latitude != nil && longitude != nil {
		location = fmt.Sprintf("Latitude: %v, Longitude: %v", *latitude, *longitude)
	}
	if reporterHistory == "" {
		reporterHistory = "Não disponível"
	}

	prompt := fmt.Sprintf(severityAnalysisPrompt, description, category, occurredAt, location, reporterHistory)
	if guidance, ok := categoryGuidance[strings.ToUpper(category)]; ok {
		prompt = guidance + prompt
	}
	return prompt
}
