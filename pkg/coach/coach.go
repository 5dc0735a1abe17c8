package coach

import (
	"context"
	"iter"
	"strings"

	"ship-framework-be/pkg/ideation"
	"ship-framework-be/pkg/llm"
)

// DeepReasoningBudget is the thinking budget used in deep reasoning mode.
const DeepReasoningBudget = 32768

// Request is everything needed to coach one step.
type Request struct {
	Step             ideation.StepID
	Inputs           map[ideation.StepID]string
	PreviousResponse string
	Settings         ideation.Settings
}

// Coach turns step inputs into streamed coaching feedback.
type Coach struct {
	provider llm.LLMProvider
}

func New(provider llm.LLMProvider) *Coach {
	return &Coach{provider: provider}
}

// Stream starts a coaching generation. The sequence yields text deltas with
// any citations, and at most one trailing error.
func (c *Coach) Stream(ctx context.Context, req Request) iter.Seq2[llm.Chunk, error] {
	prompt, err := BuildPrompt(req.Step, req.Inputs, strings.TrimSpace(req.PreviousResponse))
	if err != nil {
		return func(yield func(llm.Chunk, error) bool) {
			yield(llm.Chunk{}, llm.NewError(llm.KindUnsupported, c.provider.Name(), err))
		}
	}
	return c.provider.GenerateStream(ctx, prompt, Options(req.Settings)...)
}

// Options maps workspace settings onto provider options. Deep reasoning runs
// on the pro model with a large thinking budget; grounding enables web search.
func Options(s ideation.Settings) []llm.Option {
	s = s.Normalize()
	opts := []llm.Option{llm.WithTemperature(s.Temperature)}
	switch {
	case s.DeepReasoning:
		opts = append(opts, llm.WithModel(ideation.ModelPro.ID()), llm.WithThinkingBudget(DeepReasoningBudget))
	case s.WebGrounding:
		opts = append(opts, llm.WithModel(s.Model.ID()), llm.WithWebGrounding(true))
	default:
		opts = append(opts, llm.WithModel(s.Model.ID()))
	}
	return opts
}

// Citations converts provider citations into document citations.
func Citations(in []llm.Citation) []ideation.Citation {
	if len(in) == 0 {
		return nil
	}
	out := make([]ideation.Citation, len(in))
	for i, c := range in {
		out[i] = ideation.Citation{URL: c.URL, Title: c.Title}
	}
	return out
}
