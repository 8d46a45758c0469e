package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	OpenAIModel       string `env:"OPENAI-MODEL" ini:"openai_model"`
	FHIREndpoint      string `env:"FHIR-ENDPOINT" ini:"fhir_endpoint"`
	ProviderSearchURL string `env:"PROVIDER-SEARCH-URL" ini:"provider_search_url"`
}
