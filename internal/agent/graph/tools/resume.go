package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/careerpilot/server/internal/agent/model"
	"github.com/careerpilot/server/internal/agent/repo"
)

// ===================================
// Resume Generator Tools
// ===================================

type ResumeTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BestFor     string `json:"best_for"`
}

type GenerateResumeInput struct {
	TargetRole string   `json:"target_role"`
	TemplateID string   `json:"template_id,omitempty"`
	Emphasis   []string `json:"emphasis,omitempty"`
}

type GenerateResumeOutput struct {
	Resume     string `json:"resume"`
	TemplateID string `json:"template_id"`
	TargetRole string `json:"target_role"`
}

func createGenerateResumeTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "generate_resume",
			Desc: "Generate a formatted resume from the user's stored resume text and profile. Requires that resume text was stored earlier. Use list_resume_templates first if the user has not chosen a template.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"target_role": {
					Type:     "string",
					Desc:     "The job title the resume should be tailored to, e.g. 'Backend Engineer'.",
					Required: true,
				},
				"template_id": {
					Type: "string",
					Desc: "Template ID from list_resume_templates (e.g. tmpl-chrono). Defaults to tmpl-chrono.",
				},
				"emphasis": {
					Type: "array",
					Desc: "Skills or experiences to highlight prominently.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
				},
			}),
		},
		func(ctx context.Context, in *GenerateResumeInput) (*GenerateResumeOutput, error) {
			if strings.TrimSpace(in.TargetRole) == "" {
				return nil, fmt.Errorf("target_role is required")
			}

			tmpl := findTemplate(in.TemplateID)
			if tmpl == nil {
				return nil, fmt.Errorf("unknown template: %s", in.TemplateID)
			}

			source, err := profileRepo.GetResumeText(ctx, userID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return nil, fmt.Errorf("no stored resume text; ask the user to provide their resume first")
				}
				return nil, fmt.Errorf("load resume text: %w", err)
			}

			profile, err := profileRepo.GetProfile(ctx, userID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("load profile: %w", err)
			}

			return &GenerateResumeOutput{
				Resume:     renderResume(tmpl, in, profile, source),
				TemplateID: tmpl.ID,
				TargetRole: in.TargetRole,
			}, nil
		},
	)
}

type ListResumeTemplatesInput struct{}

type ListResumeTemplatesOutput struct {
	Templates []ResumeTemplate `json:"templates"`
	Total     int              `json:"total"`
}

func createListResumeTemplatesTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "list_resume_templates",
			Desc: "List the available resume templates with a short description of what each is best suited for. Use this before generate_resume when the user has not named a template.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, in *ListResumeTemplatesInput) (*ListResumeTemplatesOutput, error) {
			return &ListResumeTemplatesOutput{
				Templates: ResumeTemplates,
				Total:     len(ResumeTemplates),
			}, nil
		},
	)
}

// NewResumeGeneratorTools assembles the resume-generator role's tool
// subset for one user.
func NewResumeGeneratorTools(profileRepo model.ProfileRepository, userID string) []tool.BaseTool {
	return []tool.BaseTool{
		createGenerateResumeTool(profileRepo, userID),
		createListResumeTemplatesTool(),
	}
}

func findTemplate(id string) *ResumeTemplate {
	if id == "" {
		id = "tmpl-chrono"
	}
	for i := range ResumeTemplates {
		if ResumeTemplates[i].ID == id {
			return &ResumeTemplates[i]
		}
	}
	return nil
}

// renderResume produces a plain-text resume: a header from the stored
// profile, an emphasis line when requested, then the stored source text
// under the chosen template's section ordering.
func renderResume(tmpl *ResumeTemplate, in *GenerateResumeInput, profile *model.UserProfile, source string) string {
	var b strings.Builder

	if profile != nil && profile.Name != "" {
		b.WriteString(profile.Name)
		b.WriteString("\n")
		var contact []string
		if profile.Email != "" {
			contact = append(contact, profile.Email)
		}
		if profile.Phone != "" {
			contact = append(contact, profile.Phone)
		}
		if len(contact) > 0 {
			b.WriteString(strings.Join(contact, " | "))
			b.WriteString("\n")
		}
		if profile.Headline != "" {
			b.WriteString(profile.Headline)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Target role: %s (template: %s)\n\n", in.TargetRole, tmpl.Name))

	if len(in.Emphasis) > 0 {
		b.WriteString("Key strengths: ")
		b.WriteString(strings.Join(in.Emphasis, ", "))
		b.WriteString("\n\n")
	}

	b.WriteString(strings.TrimSpace(source))
	b.WriteString("\n")
	return b.String()
}

var ResumeTemplates = []ResumeTemplate{
	{
		ID:          "tmpl-chrono",
		Name:        "Chronological",
		Description: "Work history in reverse chronological order with a short summary on top.",
		BestFor:     "Candidates with a steady progression in one field.",
	},
	{
		ID:          "tmpl-functional",
		Name:        "Functional",
		Description: "Groups accomplishments by skill area; employment dates are secondary.",
		BestFor:     "Career changers or candidates with employment gaps.",
	},
	{
		ID:          "tmpl-hybrid",
		Name:        "Hybrid",
		Description: "Skill highlights first, followed by a condensed chronological history.",
		BestFor:     "Senior candidates with both deep skills and a long track record.",
	},
	{
		ID:          "tmpl-compact",
		Name:        "Compact",
		Description: "Single page, dense layout trimming everything but the essentials.",
		BestFor:     "Early-career candidates or fast screening pipelines.",
	},
}
