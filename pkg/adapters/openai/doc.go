// Package openai implements the booking field extractor and confirmation
// classifier on top of the OpenAI chat completions API with JSON-schema
// structured outputs.
package openai
