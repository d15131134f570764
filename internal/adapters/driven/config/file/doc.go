// Package file provides file-based implementations of driven port interfaces.
// These adapters read data from the local filesystem.
//
// Adapters:
//   - Config: YAML-based configuration loading
//   - PromptStore: answer-generation prompt template loading
package file
