package driven

// Prompt names used by the answer synthesizer.
const (
	// PromptGroundedAnswer is the template for generation-mode answers.
	// It takes the question and the retrieved context as arguments.
	PromptGroundedAnswer = "grounded_answer"

	// PromptNoInformation is the templated message returned when
	// retrieval finds nothing.
	PromptNoInformation = "no_information"
)

// PromptStore provides prompt templates for the synthesizer.
// Implementations load user-editable files with embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for a name.
	Load(name string) (string, error)
}
