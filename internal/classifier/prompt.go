// Package classifier holds the deterministic pieces of the ticket
// classification pipeline: prompt construction, model-output extraction and
// the keyword fallback.
package classifier

import "fmt"

// Prompt is the two-part instruction sent to the classification model.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = `Eres un asistente experto en clasificación de tickets de soporte.

Tu tarea es analizar tickets y clasificarlos en UNA de estas categorías:

CATEGORÍAS DISPONIBLES:
- Técnico: Problemas de servicio, conectividad, errores técnicos, fallas de sistema
- Facturación: Cobros, pagos, facturas, precios, renovaciones, suscripciones
- Comercial: Consultas sobre productos, ventas, información general, nuevos servicios

SENTIMIENTOS DISPONIBLES:
- Positivo, Neutral, Negativo

INSTRUCCIONES:
1. Lee cuidadosamente el ticket
2. Identifica palabras clave y contexto
3. Clasifica en la categoría más apropiada y detecta el sentimiento
4. Explica tu razonamiento brevemente
5. Asigna un nivel de confianza (0.0 a 1.0)
6. Extrae las palabras clave más relevantes

Responde ÚNICAMENTE en formato JSON válido, sin texto adicional.`

const userPromptFormat = `Ticket a clasificar:
"%s"

Responde en este formato JSON exacto:
{
  "category": "Técnico" o "Facturación" o "Comercial",
  "category_reasoning": "explicación breve de por qué elegiste esta categoría",
  "sentiment": "Positivo" o "Neutral" o "Negativo",
  "sentiment_reasoning": "explicación breve del sentimiento detectado",
  "confidence": 0.85,
  "keywords": ["palabra1", "palabra2", "palabra3"]
}`

// BuildPrompt produces the instruction pair for one ticket description. Pure
// function: no side effects, no external calls. The JSON shape named in the
// user part is the contract Extract relies on.
func BuildPrompt(description string) Prompt {
	return Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userPromptFormat, description),
	}
}
