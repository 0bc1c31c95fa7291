package tools

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/server/internal/agent/model"
	"github.com/careerpilot/server/internal/agent/repo"
)

// fakeProfileRepo is a map-backed ProfileRepository for tool tests.
type fakeProfileRepo struct {
	mu       sync.Mutex
	resumes  map[string]string
	profiles map[string]*model.UserProfile
	postings map[string][]model.JobPosting
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		resumes:  map[string]string{},
		profiles: map[string]*model.UserProfile{},
		postings: map[string][]model.JobPosting{},
	}
}

func (r *fakeProfileRepo) SaveResumeText(ctx context.Context, userID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumes[userID] = text
	return nil
}

func (r *fakeProfileRepo) GetResumeText(ctx context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.resumes[userID]
	if !ok {
		return "", repo.ErrNotFound
	}
	return s, nil
}

func (r *fakeProfileRepo) DeleteResumeText(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resumes, userID)
	return nil
}

func (r *fakeProfileRepo) SaveProfile(ctx context.Context, userID string, p *model.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[userID] = p
	return nil
}

func (r *fakeProfileRepo) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) SaveJobPosting(ctx context.Context, userID string, jp *model.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postings[userID] = append(r.postings[userID], *jp)
	return nil
}

func (r *fakeProfileRepo) ListJobPostings(ctx context.Context, userID string) ([]model.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.JobPosting{}, r.postings[userID]...), nil
}

func TestGenerateResumeUsesStoredData(t *testing.T) {
	pr := newFakeProfileRepo()
	pr.resumes["u1"] = "6 years of Go at Acme Corp."
	pr.profiles["u1"] = &model.UserProfile{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Headline: "Backend Engineer",
	}

	reg, err := NewRegistry(context.Background(), NewResumeGeneratorTools(pr, "u1"))
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "generate_resume", map[string]any{
		"target_role": "Senior Backend Engineer",
		"template_id": "tmpl-hybrid",
		"emphasis":    []any{"Go", "Kubernetes"},
	})
	require.NoError(t, err)

	var res GenerateResumeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "tmpl-hybrid", res.TemplateID)
	assert.Contains(t, res.Resume, "Jane Doe")
	assert.Contains(t, res.Resume, "jane@example.com")
	assert.Contains(t, res.Resume, "Senior Backend Engineer")
	assert.Contains(t, res.Resume, "Go, Kubernetes")
	assert.Contains(t, res.Resume, "6 years of Go at Acme Corp.")
}

func TestGenerateResumeWithoutStoredResumeFails(t *testing.T) {
	reg, err := NewRegistry(context.Background(), NewResumeGeneratorTools(newFakeProfileRepo(), "u1"))
	require.NoError(t, err)

	_, err = reg.Execute(context.Background(), "generate_resume", map[string]any{
		"target_role": "Backend Engineer",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stored resume")
}

func TestGenerateResumeUnknownTemplate(t *testing.T) {
	pr := newFakeProfileRepo()
	pr.resumes["u1"] = "something"
	reg, err := NewRegistry(context.Background(), NewResumeGeneratorTools(pr, "u1"))
	require.NoError(t, err)

	_, err = reg.Execute(context.Background(), "generate_resume", map[string]any{
		"target_role": "Backend Engineer",
		"template_id": "tmpl-nope",
	})
	assert.Error(t, err)
}

func TestListResumeTemplates(t *testing.T) {
	reg, err := NewRegistry(context.Background(), NewResumeGeneratorTools(newFakeProfileRepo(), "u1"))
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "list_resume_templates", map[string]any{})
	require.NoError(t, err)

	var res ListResumeTemplatesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, len(ResumeTemplates), res.Total)
}

func TestProcessResumeResultsRendersFullResume(t *testing.T) {
	calls := []model.ValidatedToolCall{
		{Name: "generate_resume", ID: "c1", Kind: model.ToolCallKind},
	}
	payload, err := json.Marshal(GenerateResumeOutput{
		Resume:     "Jane Doe\nBackend Engineer\n\nLots of Go.",
		TemplateID: "tmpl-chrono",
		TargetRole: "Backend Engineer",
	})
	require.NoError(t, err)

	summary := ProcessResumeResults(calls, "u1", nil, []*schema.Message{
		schema.ToolMessage(string(payload), "c1"),
	})

	assert.Contains(t, summary, "Backend Engineer role")
	assert.Contains(t, summary, "Lots of Go.")
}

func TestProcessResumeResultsPassesThroughUnknownPayload(t *testing.T) {
	calls := []model.ValidatedToolCall{
		{Name: "generate_resume", ID: "c1", Kind: model.ToolCallKind},
	}
	summary := ProcessResumeResults(calls, "u1", nil, []*schema.Message{
		schema.ToolMessage("Error executing generate_resume: no stored resume", "c1"),
	})
	assert.Contains(t, summary, "no stored resume")
}

func TestProcessResumeResultsEmptyFallback(t *testing.T) {
	summary := ProcessResumeResults(nil, "u1", nil, nil)
	assert.NotEmpty(t, summary)
}

func TestUpdateContactInfoMergesFields(t *testing.T) {
	pr := newFakeProfileRepo()
	pr.profiles["u1"] = &model.UserProfile{Name: "Jane Doe", Email: "old@example.com"}

	reg, err := NewRegistry(context.Background(), NewDataManagerTools(pr, "u1"))
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "update_contact_info", map[string]any{
		"email": "new@example.com",
	})
	require.NoError(t, err)

	var res UpdateContactInfoOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "new@example.com", res.Profile.Email)
	// untouched field survives
	assert.Equal(t, "Jane Doe", res.Profile.Name)
}

func TestDeleteStoredResumeNeedsConfirmation(t *testing.T) {
	pr := newFakeProfileRepo()
	pr.resumes["u1"] = "resume"

	reg, err := NewRegistry(context.Background(), NewDataManagerTools(pr, "u1"))
	require.NoError(t, err)

	_, err = reg.Execute(context.Background(), "delete_stored_resume", map[string]any{"confirm": false})
	assert.Error(t, err)
	assert.Equal(t, "resume", pr.resumes["u1"])

	_, err = reg.Execute(context.Background(), "delete_stored_resume", map[string]any{"confirm": true})
	require.NoError(t, err)
	_, ok := pr.resumes["u1"]
	assert.False(t, ok)
}

func TestGenerateCoverLetterUsesProfile(t *testing.T) {
	pr := newFakeProfileRepo()
	pr.profiles["u1"] = &model.UserProfile{Name: "Jane Doe", Headline: "Backend Engineer"}

	reg, err := NewRegistry(context.Background(), NewCoverLetterTools(pr, "u1"))
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "generate_cover_letter", map[string]any{
		"company":    "Initech",
		"role":       "Platform Engineer",
		"tone":       "enthusiastic",
		"highlights": []any{"Scaled a Go service to 1M RPS"},
	})
	require.NoError(t, err)

	var res GenerateCoverLetterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Contains(t, res.CoverLetter, "thrilled")
	assert.Contains(t, res.CoverLetter, "Initech")
	assert.Contains(t, res.CoverLetter, "Scaled a Go service to 1M RPS")
	assert.Contains(t, res.CoverLetter, "Jane Doe")
}
