package app

import (
	"context"

	"github.com/upb/research-assistant/services/providers"
	"github.com/upb/research-assistant/services/providers/gemini"
	"github.com/upb/research-assistant/services/providers/ollama"
	"github.com/upb/research-assistant/services/providers/openai"
	"go.uber.org/zap"
)

// registerProviders adds every provider with enough configuration to run.
// OpenAI counts as configured with a key or with a non-default base URL,
// since local OpenAI-compatible servers often need no key.
func (d *Dependencies) registerProviders(ctx context.Context) error {
	cfg := d.Config.Providers
	d.ProviderRegistry = providers.NewRegistry()

	if cfg.OpenAI.APIKey != "" || (cfg.OpenAI.BaseURL != "" && cfg.OpenAI.BaseURL != openai.DefaultBaseURL) {
		adapter := openai.NewOpenAIAdapter(providers.ProviderConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.OpenAI.Timeout,
		})
		if err := d.register(adapter); err != nil {
			return err
		}
	}

	if cfg.Gemini.APIKey != "" {
		adapter, err := gemini.NewGeminiAdapter(ctx, providers.ProviderConfig{
			APIKey:  cfg.Gemini.APIKey,
			Timeout: cfg.Gemini.Timeout,
		})
		if err != nil {
			return err
		}
		d.onClose(adapter.Close)
		if err := d.register(adapter); err != nil {
			return err
		}
	}

	if cfg.Ollama.Enabled {
		adapter, err := ollama.NewOllamaAdapter(providers.ProviderConfig{
			BaseURL: cfg.Ollama.BaseURL,
			Timeout: cfg.Ollama.Timeout,
		})
		if err != nil {
			return err
		}
		if err := d.register(adapter); err != nil {
			return err
		}
	}

	d.warnUnresolvedModel()
	return nil
}

func (d *Dependencies) register(p providers.Provider) error {
	if err := d.ProviderRegistry.Register(p); err != nil {
		return err
	}
	d.Logger.Info("provider registered", zap.String("provider", p.Name()))
	return nil
}

// warnUnresolvedModel logs when chat requests are bound to fail. Startup
// still succeeds so the document endpoints stay available.
func (d *Dependencies) warnUnresolvedModel() {
	model := d.Config.Chat.Model
	if d.ProviderRegistry.Len() == 0 {
		d.Logger.Warn("no LLM providers configured, chat requests will fail")
		return
	}
	if _, _, err := d.ProviderRegistry.Resolve(model); err != nil {
		d.Logger.Warn("chat model does not match a configured provider",
			zap.String("model", model),
			zap.Strings("providers", d.ProviderRegistry.Names()),
			zap.Error(err))
	}
}
