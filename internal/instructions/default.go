package instructions

// DefaultBundle returns the built-in instruction set used when no bundle
// file is configured.
func DefaultBundle() *Bundle {
	return &Bundle{
		Name:        "default",
		Description: "Built-in mission instruction set",
		Version:     "1.0.0",
		Templates: TemplateSet{
			TaskBreakdown: Template{
				Prompt: Prompt{
					User: `Mission: {{task}}

Available capabilities: {{tools}}

Capability schemas:
{{schemas}}

Break this mission into a short, ordered list of concrete steps. Each step must be small enough for a single worker request and verifiable from its output. List the steps and nothing else.`,
					System: "You are a mission planner. You decompose missions into small verifiable steps and never execute them yourself.",
				},
				Variables: []string{"task", "tools", "schemas"},
			},
			WorkerPromptGeneration: Template{
				Prompt: Prompt{
					User: `Based on the breakdown and everything accomplished so far, produce the single next instruction for the worker. Reply with only the instruction text.

Worker instruction style:
{{promptTemplate}}`,
					System: "You produce exactly one concrete, self-contained instruction per request.",
				},
				Variables: []string{"promptTemplate"},
			},
			ResultAnalysis: Template{
				Prompt: Prompt{
					User: `Worker response:
{{workerResponse}}

Recent system events: {{systemEvents}}

This is iteration {{iteration}} of {{maxIterations}}.

Judge mission progress against the breakdown. Reply with "completed" when the mission goal is fully achieved, "failed" when it can no longer be achieved, otherwise state what remains to be done.`,
					System: "You judge mission progress strictly from the evidence above. Never claim completion without it.",
				},
				Variables: []string{"workerResponse", "systemEvents", "iteration", "maxIterations"},
			},
			FinalReport: Template{
				Prompt: Prompt{
					User: `Mission transcript:
{{history}}

Write a concise report of what the mission accomplished. Cite concrete outcomes from the transcript, note anything left unfinished, and skip pleasantries.`,
					System: "You write final mission reports for an operator who did not watch the run.",
				},
				Variables: []string{"history"},
			},
		},
	}
}
