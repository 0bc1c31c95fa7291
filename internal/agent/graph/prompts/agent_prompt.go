package prompts

import (
	"context"
	_ "embed"
	"strings"

	"github.com/careerpilot/server/internal/agent/model"
)

//go:embed template/agent_prompt.txt
var agentSystemPrompt string

// Role instructions inserted into the shared agent template. The exact
// wording is business copy; the engine only threads it through.
var roleInstructions = map[string]string{
	model.AgentDataManager: "You manage the user's stored career data. " +
		"When the user provides resume text, store it with store_resume_text. " +
		"When they give contact details, record them with update_contact_info. " +
		"Confirm what you stored; never paraphrase the stored text back in full.",
	model.AgentResumeGenerator: "You generate resumes from the user's stored profile and resume text. " +
		"Use list_resume_templates to offer choices and generate_resume to produce the document. " +
		"If no data is stored yet, say so and suggest providing a resume first.",
	model.AgentCoverLetter: "You write cover letters tailored to a specific job and company using " +
		"generate_cover_letter. Ask the supervisor to collect the job details if they are missing.",
	model.AgentProfileReader: "You report what is currently stored about the user. " +
		"Use get_user_profile and get_stored_resume; summarize rather than dumping raw text.",
	model.AgentJobPosting: "You analyze and save job postings. " +
		"When the user pastes a posting, run analyze_job_posting on its text; " +
		"use save_job_posting to keep a reference for later.",
}

// RoleInstructions returns the instruction block for an agent type.
func RoleInstructions(agentType string) string {
	return roleInstructions[agentType]
}

// RenderAgentSystem renders a specialized agent's system prompt via the
// Eino prompt component.
func RenderAgentSystem(ctx context.Context, agentType, instructions string) (string, error) {
	content := strings.NewReplacer(
		"{agent_name}", agentType,
		"{instructions}", instructions,
	).Replace(agentSystemPrompt)

	return renderSystem(ctx, content, "agent prompt callbacks")
}
