package classifier

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantErr      bool
		wantCategory string
	}{
		{
			name:         "bare json object",
			raw:          `{"category":"Técnico","sentiment":"Negativo","confidence":0.9}`,
			wantCategory: "Técnico",
		},
		{
			name:         "json wrapped in prose",
			raw:          "Claro, aquí está mi análisis:\n{\"category\":\"Facturación\",\"confidence\":0.8}\nEspero que ayude.",
			wantCategory: "Facturación",
		},
		{
			name:         "json inside code fence",
			raw:          "```json\n{\"category\":\"Comercial\",\"keywords\":[\"plan\"]}\n```",
			wantCategory: "Comercial",
		},
		{
			name:    "no braces at all",
			raw:     "garbage no braces",
			wantErr: true,
		},
		{
			name:    "malformed span",
			raw:     "prefix {category: Técnico,} suffix",
			wantErr: true,
		},
		{
			name:    "object without category",
			raw:     `{"sentiment":"Neutral","confidence":0.7}`,
			wantErr: true,
		},
		{
			name:    "empty category",
			raw:     `{"category":"   "}`,
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Extract(%q) expected error, got %+v", tt.raw, got)
				}
				if !errors.Is(err, ErrNoClassification) {
					t.Fatalf("error %v should wrap ErrNoClassification", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract(%q) unexpected error: %v", tt.raw, err)
			}
			if got.Category != tt.wantCategory {
				t.Fatalf("category = %q, want %q", got.Category, tt.wantCategory)
			}
		})
	}
}

func TestExtractFullSchemaRoundTrip(t *testing.T) {
	raw := `El resultado es:
{
  "category": "Técnico",
  "category_reasoning": "menciona problemas de conectividad",
  "sentiment": "Negativo",
  "sentiment_reasoning": "el cliente expresa urgencia",
  "confidence": 0.87,
  "keywords": ["internet", "no funciona", "urgente"]
}`

	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category != "Técnico" || got.Sentiment != "Negativo" {
		t.Fatalf("labels = (%q, %q)", got.Category, got.Sentiment)
	}
	if got.CategoryReasoning == "" || got.SentimentReasoning == "" {
		t.Fatal("reasoning fields were dropped")
	}
	confidence, ok := got.Confidence.(float64)
	if !ok || confidence != 0.87 {
		t.Fatalf("confidence = %v (%T), want 0.87", got.Confidence, got.Confidence)
	}
	if len(got.Keywords) != 3 || got.Keywords[0] != "internet" {
		t.Fatalf("keywords = %v", got.Keywords)
	}
}

func TestExtractTakesGreedyBraceSpan(t *testing.T) {
	// two objects in one answer: the greedy span covers both, which is not
	// valid JSON, so extraction fails rather than guessing
	raw := `{"category":"Técnico"} {"category":"Comercial"}`
	if _, err := Extract(raw); err == nil {
		t.Fatal("expected greedy span over two objects to fail decoding")
	}
}
