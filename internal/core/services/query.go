package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
	"github.com/oceanum-labs/oceanrag/internal/logger"
)

// Default query parameters.
const (
	DefaultMaxResults = 5

	generationTemperature = 0.7
	generationMaxTokens   = 1000

	systemInstruction = "You are an expert marine scientist and ocean sustainability specialist."
)

// GenerationResult is the outcome of answer generation. A failed model
// call produces a result whose Answer carries the error text; generation
// never returns an error to its caller.
type GenerationResult struct {
	Answer string
	Model  string
	Usage  domain.Usage
}

// AnswerGenerator turns a question and an assembled context into an answer
// by substituting both into the prompt template and invoking the model.
type AnswerGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAnswerGenerator creates an answer generator.
func NewAnswerGenerator(llm driven.LLMService, prompts driven.PromptStore) *AnswerGenerator {
	return &AnswerGenerator{llm: llm, prompts: prompts}
}

// Generate produces an answer for the question grounded in the context.
func (g *AnswerGenerator) Generate(ctx context.Context, question, contextText string) GenerationResult {
	template := g.prompts.Load()
	prompt := strings.ReplaceAll(template, "{context}", contextText)
	prompt = strings.ReplaceAll(prompt, "{question}", question)

	messages := []driven.ChatMessage{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: prompt},
	}
	opts := driven.ChatOptions{
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	}

	result, err := g.llm.Chat(ctx, messages, opts)
	if err != nil {
		logger.Warn("generation failed: %v", err)
		return GenerationResult{
			Answer: fmt.Sprintf("Error generating response: %v", err),
			Model:  g.llm.ModelName(),
		}
	}

	return GenerationResult{
		Answer: result.Content,
		Model:  g.llm.ModelName(),
		Usage:  result.Usage,
	}
}

// Retriever orchestrates the query pipeline: question embedding,
// similarity search, context assembly, answer generation and response
// packaging. No failure mode escapes Query; every path produces a
// well-formed response.
type Retriever struct {
	embedder  driven.EmbeddingService
	store     driven.DocumentStore
	assembler *ContextAssembler
	generator *AnswerGenerator
}

// NewRetriever creates a query orchestrator.
func NewRetriever(
	embedder driven.EmbeddingService,
	store driven.DocumentStore,
	assembler *ContextAssembler,
	generator *AnswerGenerator,
) *Retriever {
	return &Retriever{
		embedder:  embedder,
		store:     store,
		assembler: assembler,
		generator: generator,
	}
}

// Query answers a natural-language question over the ingested corpus.
func (r *Retriever) Query(ctx context.Context, question string, opts domain.SearchOptions) *domain.QueryResponse {
	if opts.Limit <= 0 {
		opts.Limit = DefaultMaxResults
	}

	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		logger.Warn("query embedding failed: %v", err)
		return &domain.QueryResponse{
			Answer:  "Error creating query embedding",
			Sources: []domain.Source{},
			Context: "",
			Metadata: domain.QueryMetadata{
				Question:       question,
				FiltersApplied: opts.Filters,
			},
		}
	}

	results, err := r.store.SearchChunks(ctx, embedding, opts)
	if err != nil {
		// A store failure degrades to an empty result set.
		logger.Warn("similarity search failed: %v", err)
		results = nil
	}

	contextText := r.assembler.Assemble(results)
	generation := r.generator.Generate(ctx, question, contextText)

	sources := make([]domain.Source, 0, len(results))
	for _, result := range results {
		sources = append(sources, domain.Source{
			Filename:        result.Filename,
			Organization:    result.Organization,
			DocType:         result.DocType,
			SimilarityScore: roundScore(result.Similarity),
			GeographicFocus: domain.MetadataString(result.Metadata, "geographic_focus"),
			Topics:          topicsOrEmpty(result.Metadata),
		})
	}

	return &domain.QueryResponse{
		Answer:  generation.Answer,
		Sources: sources,
		Context: contextText,
		Metadata: domain.QueryMetadata{
			Question:       question,
			ResultsCount:   len(results),
			ModelUsage:     generation.Usage,
			FiltersApplied: opts.Filters,
		},
	}
}

// roundScore rounds a similarity score to three decimal places for display.
func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}

func topicsOrEmpty(meta map[string]any) []string {
	if topics := domain.MetadataStrings(meta, "topics"); topics != nil {
		return topics
	}
	return []string{}
}
