package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/i4h/health-companion/appconfig"
	"github.com/i4h/health-companion/fhir"
	"github.com/i4h/health-companion/llm"
	"github.com/i4h/health-companion/orchestrator"
	"github.com/i4h/health-companion/session"
	"github.com/i4h/health-companion/tools"
	"go.uber.org/zap"
)

func main() {
	dotenv.LoadEnv()

	// load config file
	ccfgg := &appconfig.AppConfig{}
	err := config.LoadConfig("config.ini", ccfgg)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	model := ccfgg.OpenAIModel
	if model == "" {
		model = "gpt-5.1"
	}

	registry := tools.NewRegistry()
	// Tool initialization is best-effort: missing credentials reduce the
	// capability set instead of failing the app
	if providerTool, err := tools.NewProviderSearchTool(ccfgg.ProviderSearchURL); err != nil {
		logger.Error("Provider search tool not available", zap.Error(err))
	} else {
		registry.Register(providerTool)
		logger.Info("Provider search tool initialized")
	}

	orch := orchestrator.NewOrchestratorBuilder().
		WithModel(llm.NewOpenAIClient(model)).
		WithRegistry(registry).
		Build()

	ctx := context.Background()
	sess := session.New(os.Getenv("PATIENT_MPIID"), "")

	if ccfgg.FHIREndpoint != "" {
		loadClinicalDocument(ctx, ccfgg.FHIREndpoint, sess)
	}

	runConsole(ctx, orch, sess)
}

// loadClinicalDocument fetches and minimizes the patient bundle once per
// process, through the shared document cache.
func loadClinicalDocument(ctx context.Context, endpoint string, sess *session.Session) {
	fetchClient, err := fhir.NewFetchClient()
	if err != nil {
		logger.Error("FHIR fetch not configured, continuing without clinical data", zap.Error(err))
		return
	}

	cache := session.NewDocumentCache()
	minimized, err := cache.GetOrFetch(ctx, sess.PatientID, func(ctx context.Context) (fhir.Bundle, error) {
		return fetchClient.Fetch(ctx, endpoint)
	})
	if err != nil {
		logger.Error("Failed to fetch clinical data", zap.Error(err))
		fmt.Println("Could not load your health records. Please contact technical staff.")
		return
	}

	sess.SetMinimizedDocument(minimized)
	logger.Info("Clinical document loaded", zap.Int("resources", len(minimized.Entry)))
}

// runConsole is the session boundary: one stdin line per turn, final reply
// printed per turn. The web UI plays the same role in deployment.
func runConsole(ctx context.Context, orch *orchestrator.Orchestrator, sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Println("AI Health Companion. Type your question, or 'exit' to quit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		userMessage := strings.TrimSpace(scanner.Text())
		if userMessage == "" {
			continue
		}
		if userMessage == "exit" || userMessage == "quit" {
			sess.Clear()
			return
		}

		answer := orch.GenerateResponse(ctx, userMessage, sess.Messages(), sess.MinimizedDocument())
		sess.AddMessage("user", userMessage)
		sess.AddMessage("assistant", answer)

		fmt.Println(answer)
	}
}
