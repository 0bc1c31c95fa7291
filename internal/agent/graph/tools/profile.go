package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/careerpilot/server/internal/agent/model"
	"github.com/careerpilot/server/internal/agent/repo"
)

// ===================================
// Profile Reader Tools
// ===================================

type GetUserProfileInput struct{}

type GetUserProfileOutput struct {
	Found   bool               `json:"found"`
	Profile *model.UserProfile `json:"profile,omitempty"`
	Note    string             `json:"note,omitempty"`
}

func createGetUserProfileTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "get_user_profile",
			Desc: "Read the user's stored profile: name, contact details, headline and skills. Read-only.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, in *GetUserProfileInput) (*GetUserProfileOutput, error) {
			profile, err := profileRepo.GetProfile(ctx, userID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return &GetUserProfileOutput{
						Found: false,
						Note:  "No profile stored yet. The data manager can record contact details.",
					}, nil
				}
				return nil, fmt.Errorf("load profile: %w", err)
			}
			return &GetUserProfileOutput{Found: true, Profile: profile}, nil
		},
	)
}

type GetStoredResumeInput struct{}

type GetStoredResumeOutput struct {
	Found      bool   `json:"found"`
	ResumeText string `json:"resume_text,omitempty"`
	Characters int    `json:"characters,omitempty"`
	Note       string `json:"note,omitempty"`
}

func createGetStoredResumeTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "get_stored_resume",
			Desc: "Read the user's stored resume text verbatim. Read-only.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, in *GetStoredResumeInput) (*GetStoredResumeOutput, error) {
			text, err := profileRepo.GetResumeText(ctx, userID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return &GetStoredResumeOutput{
						Found: false,
						Note:  "No resume stored yet. The data manager can store one.",
					}, nil
				}
				return nil, fmt.Errorf("load resume text: %w", err)
			}
			return &GetStoredResumeOutput{
				Found:      true,
				ResumeText: text,
				Characters: len(text),
			}, nil
		},
	)
}

// NewProfileReaderTools assembles the profile-reader role's tool subset
// for one user. Both tools are read-only.
func NewProfileReaderTools(profileRepo model.ProfileRepository, userID string) []tool.BaseTool {
	return []tool.BaseTool{
		createGetUserProfileTool(profileRepo, userID),
		createGetStoredResumeTool(profileRepo, userID),
	}
}
