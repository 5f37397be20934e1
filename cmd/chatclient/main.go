// Chatclient asks questions of the OpenAI chat completions API.
//
// It sends one request per question, fills article templates with the
// answers, and can keep a log of every raw exchange for later inspection.
//
// Usage:
//
//	# Ask questions one by one
//	chatclient ask "What is the capital of France?" "And of Italy?"
//
//	# Ask every line of a file
//	chatclient ask --file questions.txt
//
//	# Fill an article template
//	chatclient fill --article article.md --questions questions.toml
//
//	# Check that the configured key is accepted
//	chatclient check
//
//	# Inspect the exchange log
//	chatclient log list --outcome unauthorized
//	chatclient log export --format csv --output exchanges.csv
//
//	# Apply the retention policy once
//	chatclient prune
package main

func main() {
	Execute()
}
