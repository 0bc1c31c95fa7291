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
// Data Manager Tools
// ===================================

type StoreResumeTextInput struct {
	ResumeText string `json:"resume_text"`
}

type StoreResumeTextOutput struct {
	Status     string `json:"status"`
	Characters int    `json:"characters"`
}

func createStoreResumeTextTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "store_resume_text",
			Desc: "Store the user's raw resume text for later use. Overwrites any previously stored resume. Use this whenever the user pastes or dictates their resume content.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"resume_text": {
					Type:     "string",
					Desc:     "The full resume text exactly as the user provided it. Do not summarize or rewrite it before storing.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *StoreResumeTextInput) (*StoreResumeTextOutput, error) {
			text := strings.TrimSpace(in.ResumeText)
			if text == "" {
				return nil, fmt.Errorf("resume_text is required")
			}
			if err := profileRepo.SaveResumeText(ctx, userID, text); err != nil {
				return nil, fmt.Errorf("store resume text: %w", err)
			}
			return &StoreResumeTextOutput{
				Status:     "stored",
				Characters: len(text),
			}, nil
		},
	)
}

type UpdateContactInfoInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Headline string `json:"headline,omitempty"`
}

type UpdateContactInfoOutput struct {
	Status  string             `json:"status"`
	Profile *model.UserProfile `json:"profile"`
}

func createUpdateContactInfoTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "update_contact_info",
			Desc: "Update the user's stored contact details (name, email, phone, professional headline). Only the fields provided are changed; omitted fields keep their current value.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name": {
					Type: "string",
					Desc: "Full name as it should appear on documents.",
				},
				"email": {
					Type: "string",
					Desc: "Contact email address.",
				},
				"phone": {
					Type: "string",
					Desc: "Contact phone number.",
				},
				"headline": {
					Type: "string",
					Desc: "Short professional headline, e.g. 'Senior Backend Engineer'.",
				},
			}),
		},
		func(ctx context.Context, in *UpdateContactInfoInput) (*UpdateContactInfoOutput, error) {
			if in.Name == "" && in.Email == "" && in.Phone == "" && in.Headline == "" {
				return nil, fmt.Errorf("at least one contact field is required")
			}

			profile, err := profileRepo.GetProfile(ctx, userID)
			if err != nil {
				if !errors.Is(err, repo.ErrNotFound) {
					return nil, fmt.Errorf("load profile: %w", err)
				}
				profile = &model.UserProfile{}
			}

			if in.Name != "" {
				profile.Name = in.Name
			}
			if in.Email != "" {
				profile.Email = in.Email
			}
			if in.Phone != "" {
				profile.Phone = in.Phone
			}
			if in.Headline != "" {
				profile.Headline = in.Headline
			}

			if err := profileRepo.SaveProfile(ctx, userID, profile); err != nil {
				return nil, fmt.Errorf("save profile: %w", err)
			}
			return &UpdateContactInfoOutput{
				Status:  "updated",
				Profile: profile,
			}, nil
		},
	)
}

type DeleteStoredResumeInput struct {
	Confirm bool `json:"confirm"`
}

type DeleteStoredResumeOutput struct {
	Status string `json:"status"`
}

func createDeleteStoredResumeTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "delete_stored_resume",
			Desc: "Permanently delete the user's stored resume text. Only call this after the user has explicitly confirmed they want it removed.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"confirm": {
					Type:     "boolean",
					Desc:     "Must be true. Set it only after the user confirmed the deletion.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *DeleteStoredResumeInput) (*DeleteStoredResumeOutput, error) {
			if !in.Confirm {
				return nil, fmt.Errorf("deletion requires explicit confirmation from the user")
			}
			if err := profileRepo.DeleteResumeText(ctx, userID); err != nil {
				return nil, fmt.Errorf("delete resume text: %w", err)
			}
			return &DeleteStoredResumeOutput{Status: "deleted"}, nil
		},
	)
}

// NewDataManagerTools assembles the data-manager role's tool subset for
// one user.
func NewDataManagerTools(profileRepo model.ProfileRepository, userID string) []tool.BaseTool {
	return []tool.BaseTool{
		createStoreResumeTextTool(profileRepo, userID),
		createUpdateContactInfoTool(profileRepo, userID),
		createDeleteStoredResumeTool(profileRepo, userID),
	}
}
