package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
)

func seedLeads(t *testing.T, n int) *database.MemoryLeadRepository {
	t.Helper()
	repo := database.NewMemoryLeadRepository()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		source := entity.SourceContactForm
		if i%3 == 0 {
			source = entity.SourceMetaAds
		}
		lead := entity.NewLead(fmt.Sprintf("Lead %02d", i), fmt.Sprintf("lead%d@x.com", i), source, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(context.Background(), lead))
	}
	return repo
}

func TestListLeads_PaginationPartitions(t *testing.T) {
	uc := NewListLeadsUseCase(seedLeads(t, 25))
	ctx := context.Background()

	seen := map[string]bool{}
	var prev time.Time
	for page := 1; page <= 3; page++ {
		out, err := uc.Execute(ctx, ListLeadsInput{Page: page, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, PaginationOutput{Page: page, Limit: 10, Total: 25, TotalPages: 3}, out.Pagination)

		for _, l := range out.Leads {
			assert.False(t, seen[l.ID])
			seen[l.ID] = true
			if !prev.IsZero() {
				assert.True(t, l.CreatedAt.Before(prev), "createdAt must be descending")
			}
			prev = l.CreatedAt
		}
	}
	assert.Len(t, seen, 25)

	out, err := uc.Execute(ctx, ListLeadsInput{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, out.Leads)
}

func TestListLeads_DefaultsAndCap(t *testing.T) {
	uc := NewListLeadsUseCase(seedLeads(t, 12))

	out, err := uc.Execute(context.Background(), ListLeadsInput{})
	require.NoError(t, err)
	assert.Len(t, out.Leads, DefaultPageLimit)
	assert.Equal(t, 1, out.Pagination.Page)
	assert.Equal(t, 2, out.Pagination.TotalPages)

	out, err = uc.Execute(context.Background(), ListLeadsInput{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, out.Pagination.Limit)
}

func TestListLeads_AllAndFilters(t *testing.T) {
	uc := NewListLeadsUseCase(seedLeads(t, 12))

	out, err := uc.Execute(context.Background(), ListLeadsInput{All: true, Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Leads, 12)
	assert.Equal(t, 12, out.Pagination.Total)

	out, err = uc.Execute(context.Background(), ListLeadsInput{Source: "meta_ads", All: true})
	require.NoError(t, err)
	assert.Len(t, out.Leads, 4)

	out, err = uc.Execute(context.Background(), ListLeadsInput{Search: "LEAD11@"})
	require.NoError(t, err)
	require.Len(t, out.Leads, 1)
	assert.Equal(t, "Lead 11", out.Leads[0].Name)
}

func TestListLeads_EmptyStore(t *testing.T) {
	out, err := NewListLeadsUseCase(database.NewMemoryLeadRepository()).Execute(context.Background(), ListLeadsInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Leads)
	assert.Equal(t, 0, out.Pagination.TotalPages)
}

func TestListLeads_RejectsUnknownEnums(t *testing.T) {
	repo := new(MockLeadRepository)
	_, err := NewListLeadsUseCase(repo).Execute(context.Background(), ListLeadsInput{Status: "archived", Source: "tv"})

	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Len(t, de.Fields, 2)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestParsePageParams(t *testing.T) {
	page, limit, errs := ParsePageParams("", "")
	assert.Equal(t, 0, page)
	assert.Equal(t, 0, limit)
	assert.Empty(t, errs)

	page, limit, errs = ParsePageParams("2", "25")
	assert.Equal(t, 2, page)
	assert.Equal(t, 25, limit)
	assert.Empty(t, errs)

	_, _, errs = ParsePageParams("0", "x")
	assert.Len(t, errs, 2)
}

func TestGetLead(t *testing.T) {
	repo := seedLeads(t, 1)
	all, _ := repo.ListAll(context.Background(), entity.LeadFilter{})

	uc := NewListLeadsUseCase(repo)
	lead, err := uc.Get(context.Background(), all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Lead 00", lead.Name)

	_, err = uc.Get(context.Background(), "nope")
	assert.Equal(t, CodeNotFound, codeOf(t, err))
}
