package gemini

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/judge"
)

//go:embed prompts/judge.tmpl
var defaultPromptTemplate string

// promptData is the data passed to the prompt template.
type promptData struct {
	LearnerAnswer   string
	ReferenceAnswer string
	QuestionKind    string
	StudyMode       string
	Word            string
	FreeTextContext string
	Hints           []string
}

// loadPromptTemplate parses the template at path, or the embedded default when path is empty.
func loadPromptTemplate(path string) (*template.Template, error) {
	content := defaultPromptTemplate
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				judge.ErrInvalidConfig, path, err)
		}
		content = string(raw)
	}

	tmpl, err := template.New("judge").Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", judge.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

// renderPrompt executes tmpl for the context. Answers are passed trimmed but keep
// their original case so the model sees what the learner typed.
func renderPrompt(tmpl *template.Template, vc domain.ValidationContext, hints []string) (string, error) {
	n := vc.Normalized()
	data := promptData{
		LearnerAnswer:   trim(vc.LearnerAnswer),
		ReferenceAnswer: trim(vc.ReferenceAnswer),
		QuestionKind:    n.QuestionKind,
		StudyMode:       n.StudyMode,
		Word:            trim(vc.Word),
		FreeTextContext: trim(vc.FreeTextContext),
		Hints:           hints,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
