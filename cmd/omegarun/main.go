// Command omegarun drives one or more scenario files through the agentic
// end-to-end test runner (spec.md §1): it wires the two MCP collaborators,
// the LLM-backed Agents, the Policy Guard and the Phase Controller, then
// runs each scenario to a terminal status and emits JSON Lines events.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/omega-e2e/runner/internal/actor"
	"github.com/omega-e2e/runner/internal/agent"
	"github.com/omega-e2e/runner/internal/config"
	"github.com/omega-e2e/runner/internal/critic"
	"github.com/omega-e2e/runner/internal/ctxview"
	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/evidence"
	"github.com/omega-e2e/runner/internal/events"
	"github.com/omega-e2e/runner/internal/guard"
	"github.com/omega-e2e/runner/internal/llm/openai"
	"github.com/omega-e2e/runner/internal/orchestrator"
	"github.com/omega-e2e/runner/internal/probe"
	"github.com/omega-e2e/runner/internal/registry"
	"github.com/omega-e2e/runner/internal/rpc"
	"github.com/omega-e2e/runner/internal/scenario"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario YAML file")
	scenarioDir := flag.String("scenario-dir", "", "path to a directory of scenario YAML files")
	eventsPath := flag.String("events", "", "path to write JSONL events (default: stdout)")
	flag.Parse()

	config.LoadEnv()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║   omega-e2e-runner                   ║")
	fmt.Println("║   agentic end-to-end test runner     ║")
	fmt.Println("╚══════════════════════════════════════╝")

	runnerCfg, err := config.LoadRunnerConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load runner config: %v", err)
	}
	fmt.Printf("🌐 UI collaborator:   %s\n", runnerCfg.MCPWebURL)
	fmt.Printf("🌐 Data collaborator: %s\n", runnerCfg.MCPDataURL)

	llmClient, err := openai.NewClientFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM client: %v", err)
	}
	fmt.Printf("🤖 LLM: %s @ %s\n", llmClient.GetConfig().Model, llmClient.GetConfig().BaseURL)

	scenarios, err := loadScenarios(*scenarioPath, *scenarioDir)
	if err != nil {
		log.Fatalf("❌ Failed to load scenarios: %v", err)
	}
	fmt.Printf("📄 Scenarios: %d loaded\n", len(scenarios))

	ctx := context.Background()

	uiClient := rpc.NewClient(rpc.ServerConfig{Name: "ui", URL: runnerCfg.MCPWebURL})
	if err := uiClient.Connect(ctx); err != nil {
		log.Fatalf("❌ Failed to connect to UI collaborator: %v", err)
	}
	defer uiClient.Close()

	dataClient := rpc.NewClient(rpc.ServerConfig{Name: "data", URL: runnerCfg.MCPDataURL})
	if err := dataClient.Connect(ctx); err != nil {
		log.Fatalf("❌ Failed to connect to data collaborator: %v", err)
	}
	defer dataClient.Close()

	reg, err := registry.Discover(ctx, uiClient, dataClient)
	if err != nil {
		log.Fatalf("❌ Failed to discover collaborator tools: %v", err)
	}
	fmt.Printf("🛠️  Tools: %d UI, %d data\n", len(reg.UIActions()), len(reg.ReadOnlyData())+len(reg.MutatingData()))

	sink, closeSink := openEventsSink(*eventsPath)
	defer closeSink()

	exitCode := 0
	for _, sc := range scenarios {
		record, err := runScenario(ctx, sc, uiClient, dataClient, llmClient, sink)
		if err != nil {
			slog.Error("omegarun: scenario errored", "scenario", sc.ID, "err", err)
			exitCode = 1
			continue
		}
		switch record.Result.Status {
		case domain.StatusSuccess:
			fmt.Printf("✅ %s: success (%d steps, $%.4f)\n", sc.ID, len(record.Steps), record.Result.CostUSD)
		case domain.StatusFailure:
			fmt.Printf("❌ %s: failure — %s\n", sc.ID, record.Result.Error)
			exitCode = 1
		default:
			fmt.Printf("💥 %s: error — %s\n", sc.ID, record.Result.Error)
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}

// runScenario constructs a fresh set of per-scenario components (memory,
// evidence store, guard) on top of the shared collaborator connections and
// LLM client, then drives the Phase Controller.
func runScenario(ctx context.Context, sc domain.ScenarioSpec, uiClient, dataClient *rpc.Client, llmClient *openai.Client, sink events.Sink) (domain.RunRecord, error) {
	reg, err := registry.Discover(ctx, uiClient, dataClient)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("omegarun: discover tools for %q: %w", sc.ID, err)
	}

	g, err := guard.New(sc.Context.StartURL)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("omegarun: guard for %q: %w", sc.ID, err)
	}

	memory := domain.NewSharedMemory()
	store := evidence.NewStore()
	assembler := ctxview.NewAssembler(memory, store.Recent)

	deps := &orchestrator.Deps{
		Registry:       reg,
		Actor:          actor.New(uiClient),
		Guard:          g,
		Broker:         probe.New(dataClient, memory),
		Data:           dataClient,
		Preconditioner: agent.NewPreconditioner(llmClient),
		Planner:        agent.NewPlanner(llmClient),
		ProbePlanner:   agent.NewProbePlanner(llmClient),
		Validator:      agent.NewValidator(llmClient),
		GoalChecker:    agent.NewGoalChecker(llmClient),
		Critic:         critic.New(),
		Evidence:       store,
		Assembler:      assembler,
		Memory:         memory,
		Sink:           sink,
		Model:          llmClient.GetConfig().Model,
	}

	return orchestrator.Run(ctx, deps, sc)
}

func loadScenarios(path, dir string) ([]domain.ScenarioSpec, error) {
	switch {
	case path != "":
		sc, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}
		return []domain.ScenarioSpec{sc}, nil
	case dir != "":
		return scenario.LoadDir(dir)
	default:
		return nil, fmt.Errorf("omegarun: one of -scenario or -scenario-dir is required")
	}
}

func openEventsSink(path string) (events.Sink, func()) {
	if path == "" {
		return events.NewJSONLWriter(os.Stdout), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("❌ Failed to open events file %q: %v", path, err)
	}
	return events.NewJSONLWriter(f), func() { _ = f.Close() }
}
