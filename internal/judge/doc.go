// Package judge defines the semantic judge port and the adapter that applies
// the application's verdict policy on top of it.
//
// A Judge is any collaborator that can decide whether a learner's answer means
// the same thing as the reference answer (the production one talks to Gemini).
// The Adapter wraps a Judge with a bounded retry policy, a per-attempt timeout,
// strict payload validation and the threshold override that turns a meaningful,
// confidently-judged "incorrect" into a correct verdict.
package judge
