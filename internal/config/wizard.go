package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/docchat-dev/docchat/internal/embeddings"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to docchat! Let's configure your knowledge base.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Model name.
	defaultModel := cfg.Model
	if cfg.Provider == ProviderOllama {
		defaultModel = "llama3"
	}
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: defaultModel,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model prompt: %w", err)
	}

	// 3. Embedding model from the catalog.
	embedPrompt := promptui.Select{
		Label: "Select embedding model",
		Items: embeddings.Models(),
	}
	if _, cfg.EmbeddingModel, err = embedPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model selection: %w", err)
	}

	// 4. Retrieval depth.
	topKPrompt := promptui.Prompt{
		Label:   "Top-K passages per question (1-20)",
		Default: strconv.Itoa(cfg.TopK),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 20 {
				return fmt.Errorf("enter a number between 1 and 20")
			}
			return nil
		},
	}
	topKStr, err := topKPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("top-k prompt: %w", err)
	}
	cfg.TopK, _ = strconv.Atoi(topKStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
