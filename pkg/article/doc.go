// Package article fills article templates with answers from the chat API.
//
// An article is plain text with {{key}} placeholders. A questions file maps
// each key to the question whose answer replaces it:
//
//	earth-be-like = "What is earth like? Answer in one sentence."
//
// The usual flow is LoadQuestions, AnswerAll, then Fill:
//
//	questions, err := article.LoadQuestions("questions.toml")
//	answers, err := article.AnswerAll(ctx, questions, ask, 4)
//	text, err := article.Fill(template, answers)
//
// Fill refuses to produce a partially filled article and reports every
// placeholder that has no answer.
package article
