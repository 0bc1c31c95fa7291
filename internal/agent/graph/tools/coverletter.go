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
// Cover Letter Tools
// ===================================

type GenerateCoverLetterInput struct {
	Company    string   `json:"company"`
	Role       string   `json:"role"`
	Tone       string   `json:"tone,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

type GenerateCoverLetterOutput struct {
	CoverLetter string `json:"cover_letter"`
	Company     string `json:"company"`
	Role        string `json:"role"`
}

func createGenerateCoverLetterTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "generate_cover_letter",
			Desc: "Generate a cover letter for a specific company and role, drawing on the user's stored profile and resume text when available. Works best after the user has stored a resume, but does not require it.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"company": {
					Type:     "string",
					Desc:     "Company the letter is addressed to.",
					Required: true,
				},
				"role": {
					Type:     "string",
					Desc:     "The position being applied for.",
					Required: true,
				},
				"tone": {
					Type: "string",
					Desc: "Desired tone: formal, conversational, or enthusiastic. Defaults to formal.",
					Enum: []string{"formal", "conversational", "enthusiastic"},
				},
				"highlights": {
					Type: "array",
					Desc: "Specific achievements or skills the letter should mention.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
				},
			}),
		},
		func(ctx context.Context, in *GenerateCoverLetterInput) (*GenerateCoverLetterOutput, error) {
			if strings.TrimSpace(in.Company) == "" {
				return nil, fmt.Errorf("company is required")
			}
			if strings.TrimSpace(in.Role) == "" {
				return nil, fmt.Errorf("role is required")
			}

			profile, err := profileRepo.GetProfile(ctx, userID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("load profile: %w", err)
			}

			return &GenerateCoverLetterOutput{
				CoverLetter: renderCoverLetter(in, profile),
				Company:     in.Company,
				Role:        in.Role,
			}, nil
		},
	)
}

// NewCoverLetterTools assembles the cover-letter role's tool subset for
// one user.
func NewCoverLetterTools(profileRepo model.ProfileRepository, userID string) []tool.BaseTool {
	return []tool.BaseTool{
		createGenerateCoverLetterTool(profileRepo, userID),
	}
}

var coverLetterOpenings = map[string]string{
	"formal":         "I am writing to express my interest in the %s position at %s.",
	"conversational": "I came across the %s opening at %s and it immediately caught my attention.",
	"enthusiastic":   "I am thrilled to apply for the %s role at %s!",
}

func renderCoverLetter(in *GenerateCoverLetterInput, profile *model.UserProfile) string {
	opening, ok := coverLetterOpenings[in.Tone]
	if !ok {
		opening = coverLetterOpenings["formal"]
	}

	var b strings.Builder
	b.WriteString("Dear Hiring Team,\n\n")
	b.WriteString(fmt.Sprintf(opening, in.Role, in.Company))
	b.WriteString("\n\n")

	if profile != nil && profile.Headline != "" {
		b.WriteString(fmt.Sprintf("As a %s, I believe my background aligns well with what you are looking for.", profile.Headline))
		b.WriteString("\n\n")
	}

	if len(in.Highlights) > 0 {
		b.WriteString("In particular, I would bring:\n")
		for _, h := range in.Highlights {
			b.WriteString(fmt.Sprintf("- %s\n", h))
		}
		b.WriteString("\n")
	} else if profile != nil && len(profile.Skills) > 0 {
		b.WriteString(fmt.Sprintf("My experience with %s maps directly onto the needs of this role.\n\n",
			strings.Join(profile.Skills, ", ")))
	}

	b.WriteString(fmt.Sprintf("I would welcome the chance to discuss how I can contribute to %s.\n\n", in.Company))
	b.WriteString("Sincerely,\n")
	if profile != nil && profile.Name != "" {
		b.WriteString(profile.Name)
	} else {
		b.WriteString("[Your name]")
	}
	b.WriteString("\n")
	return b.String()
}
