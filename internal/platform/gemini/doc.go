// Package gemini provides an implementation of the judge.Judge interface
// that uses Google's Gemini API to decide whether a learner's answer means
// the same as the reference answer.
//
// This package is an infrastructure adapter: it renders the grading prompt,
// calls the model with a low temperature and a JSON response type, and turns
// the reply into a judge.Result without exposing genai types to the rest of
// the application.
//
// Key components:
//
// 1. Prompt Management:
//   - An embedded default template, overridable from a file
//   - Optional paraphrase hints rendered as acceptable wordings
//
// 2. Response Processing:
//   - Extracts the JSON object even when wrapped in prose
//   - Rejects missing required fields and out-of-range scores
//
// 3. Error Handling:
//   - Safety blocks map to judge.ErrContentBlocked
//   - Malformed output maps to judge.ErrInvalidResponse
//   - API failures map to judge.ErrTransientFailure and are retried by judge.Adapter
package gemini
