package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/careerpilot/server/internal/agent/model"
)

// ===================================
// Job Posting Tools
// ===================================

type AnalyzeJobPostingInput struct {
	PostingText string `json:"posting_text"`
}

type AnalyzeJobPostingOutput struct {
	Title        string   `json:"title,omitempty"`
	Company      string   `json:"company,omitempty"`
	Skills       []string `json:"skills"`
	Requirements []string `json:"requirements"`
	WordCount    int      `json:"word_count"`
}

func createAnalyzeJobPostingTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "analyze_job_posting",
			Desc: "Analyze a pasted job posting: extract the title, company, required skills and key requirements. Works for anonymous users; no sign-in needed.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"posting_text": {
					Type:     "string",
					Desc:     "The full job posting text as the user pasted it.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *AnalyzeJobPostingInput) (*AnalyzeJobPostingOutput, error) {
			text := strings.TrimSpace(in.PostingText)
			if text == "" {
				return nil, fmt.Errorf("posting_text is required")
			}

			out := &AnalyzeJobPostingOutput{
				Skills:       matchKnownSkills(text),
				Requirements: extractRequirementLines(text),
				WordCount:    len(strings.Fields(text)),
			}
			out.Title, out.Company = extractTitleAndCompany(text)
			return out, nil
		},
	)
}

type SaveJobPostingInput struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url,omitempty"`
}

type SaveJobPostingOutput struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

func createSaveJobPostingTool(profileRepo model.ProfileRepository, userID string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "save_job_posting",
			Desc: "Save a job posting to the user's tracked list. Requires a signed-in user; analysis alone does not.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"title": {
					Type:     "string",
					Desc:     "Job title of the posting.",
					Required: true,
				},
				"company": {
					Type:     "string",
					Desc:     "Company offering the position.",
					Required: true,
				},
				"url": {
					Type: "string",
					Desc: "Link to the posting, when the user provided one.",
				},
			}),
		},
		func(ctx context.Context, in *SaveJobPostingInput) (*SaveJobPostingOutput, error) {
			if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Company) == "" {
				return nil, fmt.Errorf("title and company are required")
			}
			if strings.TrimSpace(userID) == "" {
				return nil, fmt.Errorf("saving a posting requires a signed-in user; analysis works without one")
			}

			jp := &model.JobPosting{Title: in.Title, Company: in.Company, URL: in.URL}
			if err := profileRepo.SaveJobPosting(ctx, userID, jp); err != nil {
				return nil, fmt.Errorf("save job posting: %w", err)
			}

			all, err := profileRepo.ListJobPostings(ctx, userID)
			if err != nil {
				return &SaveJobPostingOutput{Status: "saved"}, nil
			}
			return &SaveJobPostingOutput{Status: "saved", Total: len(all)}, nil
		},
	)
}

// NewJobPostingTools assembles the job-posting role's tool subset.
// analyze_job_posting deliberately ignores the user id so anonymous
// visitors can use it.
func NewJobPostingTools(profileRepo model.ProfileRepository, userID string) []tool.BaseTool {
	return []tool.BaseTool{
		createAnalyzeJobPostingTool(),
		createSaveJobPostingTool(profileRepo, userID),
	}
}

// knownSkills is the keyword inventory the analyzer matches against.
var knownSkills = []string{
	"Go", "Golang", "Python", "Java", "TypeScript", "JavaScript", "Rust", "C++",
	"Kubernetes", "Docker", "Terraform", "AWS", "GCP", "Azure",
	"PostgreSQL", "MySQL", "Redis", "Kafka", "gRPC", "GraphQL", "REST",
	"React", "Vue", "Node.js", "Linux", "CI/CD", "SQL", "NoSQL",
	"machine learning", "data engineering", "microservices", "distributed systems",
}

func matchKnownSkills(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, skill := range knownSkills {
		if containsWord(lower, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	if found == nil {
		found = []string{}
	}
	return found
}

// containsWord matches skill as a whole token so "Go" does not match
// inside "Google" or "Django".
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// extractRequirementLines pulls bullet-style lines and lines under a
// requirements-like heading.
func extractRequirementLines(text string) []string {
	var reqs []string
	inSection := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(strings.TrimRight(line, ":"))
		if lower == "requirements" || lower == "qualifications" || lower == "what you'll need" {
			inSection = true
			continue
		}
		if trimmed, ok := strings.CutPrefix(line, "- "); ok {
			reqs = append(reqs, trimmed)
			continue
		}
		if trimmed, ok := strings.CutPrefix(line, "* "); ok {
			reqs = append(reqs, trimmed)
			continue
		}
		if inSection {
			reqs = append(reqs, line)
		}
	}
	if len(reqs) > 10 {
		reqs = reqs[:10]
	}
	if reqs == nil {
		reqs = []string{}
	}
	return reqs
}

// extractTitleAndCompany reads conventional "Title: ..." / "Company: ..."
// headers and otherwise guesses the title from the first non-empty line.
func extractTitleAndCompany(text string) (title, company string) {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "title:"):
			title = strings.TrimSpace(line[len("title:"):])
		case strings.HasPrefix(lower, "position:"):
			title = strings.TrimSpace(line[len("position:"):])
		case strings.HasPrefix(lower, "company:"):
			company = strings.TrimSpace(line[len("company:"):])
		default:
			if title == "" && len(strings.Fields(line)) <= 8 {
				title = line
			}
		}
	}
	return title, company
}
