package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type ListLeadsUseCase struct {
	Repo         LeadRepositoryInterface
	DefaultLimit int
	MaxLimit     int
}

func NewListLeadsUseCase(repo LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Repo: repo, DefaultLimit: DefaultPageLimit, MaxLimit: MaxPageLimit}
}

// Execute returns one page ordered by createdAt desc. Page and Limit left at
// zero take the defaults; All ignores both.
func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) (*ListLeadsOutput, error) {
	filter, errs := BuildLeadFilter(input.Status, input.Source, input.Search)

	if input.Page < 0 {
		errs = append(errs, ValidationError{"page", "must be >= 1"})
	}
	if input.Limit < 0 {
		errs = append(errs, ValidationError{"limit", "must be >= 1"})
	}
	if len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	if input.All {
		leads, err := uc.Repo.ListAll(ctx, filter)
		if err != nil {
			return nil, newDatabaseError("list leads", err)
		}
		return &ListLeadsOutput{
			Leads:      leads,
			Pagination: paginationFor(1, len(leads), len(leads)),
		}, nil
	}

	page := entity.Pagination{Page: input.Page, Limit: input.Limit}
	if page.Page == 0 {
		page.Page = 1
	}
	if page.Limit == 0 {
		page.Limit = uc.DefaultLimit
	}
	if uc.MaxLimit > 0 && page.Limit > uc.MaxLimit {
		page.Limit = uc.MaxLimit
	}

	leads, total, err := uc.Repo.List(ctx, filter, page)
	if err != nil {
		return nil, newDatabaseError("list leads", err)
	}

	return &ListLeadsOutput{
		Leads:      leads,
		Pagination: paginationFor(page.Page, page.Limit, total),
	}, nil
}

func (uc *ListLeadsUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(id, "find lead", err)
	}
	return lead, nil
}

// BuildLeadFilter validates the enum filters shared by list and export.
func BuildLeadFilter(status, source, search string) (entity.LeadFilter, []ValidationError) {
	var errs []ValidationError
	filter := entity.LeadFilter{Search: strings.TrimSpace(search)}

	if status = strings.TrimSpace(status); status != "" {
		filter.Status = entity.Status(status)
		if !filter.Status.Valid() {
			errs = append(errs, ValidationError{"status", "must be one of " + joinStatuses()})
		}
	}
	if source = strings.TrimSpace(source); source != "" {
		filter.Source = entity.Source(source)
		if !filter.Source.Valid() {
			errs = append(errs, ValidationError{"source", "must be one of " + joinSources()})
		}
	}
	return filter, errs
}

// ParsePageParams reads the raw page/limit query values. Empty means default (0).
func ParsePageParams(pageRaw, limitRaw string) (page, limit int, errs []ValidationError) {
	parse := func(field, raw string) int {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, ValidationError{field, "must be an integer >= 1"})
			return 0
		}
		return n
	}
	page = parse("page", pageRaw)
	limit = parse("limit", limitRaw)
	return page, limit, errs
}

func paginationFor(page, limit, total int) PaginationOutput {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationOutput{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
