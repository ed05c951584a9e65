package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/GustavoCaso/gastos/internal/category"
	"github.com/GustavoCaso/gastos/internal/llm"
	"github.com/GustavoCaso/gastos/internal/logger"
	"github.com/GustavoCaso/gastos/internal/normalize"
)

const (
	fieldAmount      = "Monto"
	fieldCategory    = "Categoria"
	fieldDescription = "Descripcion"
)

// Result is the structured reading of one free-text entry.
type Result struct {
	Amount      float64
	Category    string
	Description string

	// Fallback is set when the reply could not be parsed and every field
	// holds its default.
	Fallback bool

	AmountDefaulted      bool
	CategoryDefaulted    bool
	DescriptionDefaulted bool
}

// Defaulted reports whether any field was filled with a fallback value.
func (r Result) Defaulted() bool {
	return r.Fallback || r.AmountDefaulted || r.CategoryDefaulted || r.DescriptionDefaulted
}

// FallbackResult is what an unparsable reply turns into.
func FallbackResult(text string) Result {
	return Result{
		Amount:               0,
		Category:             category.Fallback,
		Description:          text,
		Fallback:             true,
		AmountDefaulted:      true,
		CategoryDefaulted:    true,
		DescriptionDefaulted: true,
	}
}

// Categories provides the categories the model may choose from.
type Categories interface {
	Load() []string
}

type Classifier struct {
	generator  llm.Generator
	categories Categories
	logger     *logger.Logger
}

// New returns a classifier. A nil generator makes every call return the
// fallback result.
func New(generator llm.Generator, categories Categories, logger *logger.Logger) *Classifier {
	return &Classifier{
		generator:  generator,
		categories: categories,
		logger:     logger.With("component", "classify"),
	}
}

// Classify asks the generator to read text and normalizes the reply. The
// returned result is always usable; an error is only returned when the
// generator failed on both the strict-JSON attempt and the plain retry.
func (c *Classifier) Classify(ctx context.Context, text, model string) (Result, error) {
	if c.generator == nil {
		c.logger.Warn("no text generator configured, using fallback classification")
		return FallbackResult(text), nil
	}

	valid := c.categories.Load()
	req := llm.Request{
		Model:       model,
		Prompt:      BuildPrompt(text, valid),
		Temperature: 0,
		JSONMode:    true,
	}

	raw, err := c.generator.Generate(ctx, req)
	if err != nil {
		c.logger.Warn("strict JSON request failed, retrying without it", "model", model, "error", err)

		req.JSONMode = false
		raw, err = c.generator.Generate(ctx, req)
		if err != nil {
			return FallbackResult(text), fmt.Errorf("classification request failed: %w", err)
		}
	}

	result := Parse(raw, text, category.NewSet(valid...))
	if result.Fallback {
		c.logger.Info("unparsable classification reply", "reply", raw)
	}

	return result, nil
}

// BuildPrompt asks for a JSON object restricted to the given categories.
func BuildPrompt(text string, categories []string) string {
	allowed := category.NewSet(categories...).Sorted()

	var b strings.Builder
	b.WriteString("Extrae la siguiente información del texto y responde SOLO con JSON.\n")
	fmt.Fprintf(&b, "Campos obligatorios: %s (numero), %s (string), %s (string).\n",
		fieldAmount, fieldCategory, fieldDescription)
	fmt.Fprintf(&b, "Categorias permitidas: %s.\n\n", strings.Join(allowed, ", "))
	fmt.Fprintf(&b, "Texto: %s\n", text)

	return b.String()
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON returns the JSON object embedded in a reply. Replies that are
// exactly one object are returned as they are; otherwise the span from the
// first '{' to the last '}' is used. Without braces the trimmed reply is
// returned unchanged and will fail to parse.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return raw
	}

	if match := jsonObject.FindString(raw); match != "" {
		return strings.TrimSpace(match)
	}

	return raw
}

// Parse turns a raw reply into a Result, using text as the description
// fallback.
func Parse(raw, text string, valid category.Set) Result {
	var data map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &data); err != nil || data == nil {
		return FallbackResult(text)
	}

	amount := normalize.Amount(valueOr(data, fieldAmount, 0.0))
	cat := normalize.Category(valueOr(data, fieldCategory, category.Fallback), valid)
	description := normalize.Description(valueOr(data, fieldDescription, text), text)

	_, hasAmount := data[fieldAmount]
	_, hasCategory := data[fieldCategory]
	_, hasDescription := data[fieldDescription]

	return Result{
		Amount:               amount.Value,
		Category:             cat.Value,
		Description:          description.Value,
		AmountDefaulted:      amount.Defaulted || !hasAmount,
		CategoryDefaulted:    cat.Defaulted || !hasCategory,
		DescriptionDefaulted: description.Defaulted || !hasDescription,
	}
}

func valueOr(data map[string]any, key string, fallback any) any {
	if v, ok := data[key]; ok {
		return v
	}
	return fallback
}
