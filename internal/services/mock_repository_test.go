package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	reports map[string]*models.Report
	users   map[string]*models.User
	types   map[string]*models.ReportType
	rewards []*models.PointRewardVersion

	rewardSeq uint

	// serializableTxs counts WithSerializableTransaction calls so tests can
	// assert an operation ran at the stricter isolation level.
	serializableTxs int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		reports: make(map[string]*models.Report),
		users:   make(map[string]*models.User),
		types:   make(map[string]*models.ReportType),
	}
}

func (m *mockRepository) Report() repositories.ReportRepository         { return &mockReportRepo{m} }
func (m *mockRepository) ReportType() repositories.ReportTypeRepository { return &mockTypeRepo{m} }
func (m *mockRepository) User() repositories.UserRepository             { return &mockUserRepo{m} }
func (m *mockRepository) Reward() repositories.RewardRepository         { return &mockRewardRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) WithSerializableTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	m.serializableTxs++
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== REPORTS =====

type mockReportRepo struct{ m *mockRepository }

func (r *mockReportRepo) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	cp := *report
	cp.CreatedAt = time.Now()
	r.m.reports[report.ID] = &cp
	return nil
}

func (r *mockReportRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Report, error) {
	report, ok := r.m.reports[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *report
	return &cp, nil
}

func (r *mockReportRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]*models.Report, error) {
	var out []*models.Report
	for _, report := range r.m.reports {
		if report.UserID == ownerID {
			cp := *report
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *mockReportRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	var matched []*models.Report
	for _, report := range r.m.reports {
		if filters.Status != nil && report.Status != *filters.Status {
			continue
		}
		if filters.City != nil && (report.City == nil || *report.City != *filters.City) {
			continue
		}
		if filters.District != nil && (report.District == nil || *report.District != *filters.District) {
			continue
		}
		if filters.ReportTypeID != nil && report.ReportTypeID != *filters.ReportTypeID {
			continue
		}
		if filters.Search != nil {
			needle := strings.ToLower(*filters.Search)
			if !strings.Contains(strings.ToLower(report.Title), needle) &&
				!strings.Contains(strings.ToLower(report.Description), needle) {
				continue
			}
		}
		cp := *report
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}

	return matched, total, nil
}

func (r *mockReportRepo) UpdateDecision(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	stored, ok := r.m.reports[report.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Status = report.Status
	stored.RejectionReason = report.RejectionReason
	stored.ModeratorID = report.ModeratorID
	return nil
}

// ===== REPORT TYPES =====

type mockTypeRepo struct{ m *mockRepository }

func (r *mockTypeRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.ReportType, error) {
	var out []*models.ReportType
	for _, t := range r.m.types {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *mockTypeRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ReportType, error) {
	t, ok := r.m.types[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *mockTypeRepo) UpsertByName(ctx context.Context, tx *gorm.DB, reportType *models.ReportType) error {
	for _, existing := range r.m.types {
		if existing.Name == reportType.Name {
			existing.Description = reportType.Description
			existing.Icon = reportType.Icon
			return nil
		}
	}
	cp := *reportType
	r.m.types[reportType.ID] = &cp
	return nil
}

// ===== USERS =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	stored, ok := r.m.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Name = user.Name
	stored.Role = user.Role
	stored.IsBlocked = user.IsBlocked
	stored.AvatarURL = user.AvatarURL
	return nil
}

func (r *mockUserRepo) UpsertByEmail(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, error) {
	for _, existing := range r.m.users {
		if existing.Email == user.Email {
			existing.Name = user.Name
			existing.AvatarURL = user.AvatarURL
			cp := *existing
			return &cp, nil
		}
	}
	cp := *user
	r.m.users[user.ID] = &cp
	out := cp
	return &out, nil
}

func (r *mockUserRepo) IncrementPoints(ctx context.Context, tx *gorm.DB, userID string, delta int) error {
	stored, ok := r.m.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Points += delta
	return nil
}

// ===== REWARDS =====

type mockRewardRepo struct{ m *mockRepository }

func (r *mockRewardRepo) GetCurrent(ctx context.Context, tx *gorm.DB) (*models.PointRewardVersion, error) {
	for _, v := range r.m.rewards {
		if v.EndDate == nil {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *mockRewardRepo) CloseOpen(ctx context.Context, tx *gorm.DB, closedAt time.Time) error {
	for _, v := range r.m.rewards {
		if v.EndDate == nil {
			end := closedAt
			v.EndDate = &end
		}
	}
	return nil
}

func (r *mockRewardRepo) Create(ctx context.Context, tx *gorm.DB, version *models.PointRewardVersion) error {
	r.m.rewardSeq++
	version.ID = r.m.rewardSeq
	cp := *version
	r.m.rewards = append(r.m.rewards, &cp)
	return nil
}

func (r *mockRewardRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.PointRewardVersion, error) {
	out := make([]*models.PointRewardVersion, 0, len(r.m.rewards))
	for _, v := range r.m.rewards {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}
