package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/saferoads-vn/report-service/internal/events"
	"github.com/saferoads-vn/report-service/internal/gazetteer"
	"github.com/saferoads-vn/report-service/internal/geocoding"
	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/validator"
)

// stubGeocoder returns a canned result or error.
type stubGeocoder struct {
	result *geocoding.Result
	err    error
}

func (s *stubGeocoder) ReverseGeocode(ctx context.Context, longitude, latitude float64) (*geocoding.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReportService(repo *mockRepository, geocoder geocoding.Geocoder, publisher events.EventPublisher) ReportService {
	return NewReportService(repo, nil, testLogger(), validator.New(), geocoder, gazetteer.Default(), publisher)
}

func seedMockData(repo *mockRepository) {
	repo.types["t1"] = &models.ReportType{ID: "t1", Name: "Tình trạng đường"}
	repo.users["driver1"] = &models.User{ID: "driver1", Name: "Anh Tài", Email: "tai@example.com", Role: models.RoleDriver}
	repo.users["mod1"] = &models.User{ID: "mod1", Name: "Chị Hoa", Email: "hoa@example.com", Role: models.RoleModerator}
}

func strPtr(s string) *string { return &s }

func TestReportService_Create_ResolvesLocation(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)

	publisher := events.NewMockEventPublisher(testLogger())
	geocoder := &stubGeocoder{result: &geocoding.Result{
		PlaceName: "123 Nguyễn Thị Thập, Quận 7, Hồ Chí Minh, Việt Nam",
		Parts:     []string{"123 Nguyễn Thị Thập", "Quận 7", "Hồ Chí Minh", "Việt Nam"},
	}}
	svc := newTestReportService(repo, geocoder, publisher)

	resp, err := svc.Create(context.Background(), "driver1", &CreateReportRequest{
		Title:        "Ổ gà lớn giữa đường",
		Description:  "Ổ gà sâu gây nguy hiểm cho xe máy",
		Latitude:     10.7379,
		Longitude:    106.7218,
		ReportTypeID: "t1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if resp.Status != models.StatusPending {
		t.Errorf("status = %s, want PENDING", resp.Status)
	}
	if resp.City == nil || *resp.City != "Hồ Chí Minh" {
		t.Errorf("city = %v, want Hồ Chí Minh", resp.City)
	}
	if resp.District == nil || *resp.District != "Quận 7" {
		t.Errorf("district = %v, want Quận 7", resp.District)
	}
	if resp.Address == nil {
		t.Error("address should be set from the geocoder result")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.ReportCreated {
		t.Errorf("published events = %v, want one report.created", published)
	}
}

func TestReportService_Create_GeocoderFailure(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)

	geocoder := &stubGeocoder{err: errors.New("mapbox unreachable")}
	svc := newTestReportService(repo, geocoder, events.NewMockEventPublisher(testLogger()))

	resp, err := svc.Create(context.Background(), "driver1", &CreateReportRequest{
		Title:        "Đèn giao thông hỏng",
		Description:  "Đèn không hoạt động từ sáng",
		Latitude:     21.0278,
		Longitude:    105.8342,
		ReportTypeID: "t1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v, geocoding failure must not block submission", err)
	}

	if resp.Address != nil || resp.City != nil || resp.District != nil {
		t.Errorf("address fields = (%v, %v, %v), want all nil on geocoder failure",
			resp.Address, resp.City, resp.District)
	}
	if resp.Status != models.StatusPending {
		t.Errorf("status = %s, want PENDING", resp.Status)
	}
}

func TestReportService_Create_UnknownReportType(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	_, err := svc.Create(context.Background(), "driver1", &CreateReportRequest{
		Title:        "Báo cáo",
		Description:  "Mô tả",
		Latitude:     10.7,
		Longitude:    106.7,
		ReportTypeID: "missing",
	})
	if !errors.Is(err, ErrReportTypeNotFound) {
		t.Errorf("Create() error = %v, want ErrReportTypeNotFound", err)
	}
}

func TestReportService_Create_ValidationFailure(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	_, err := svc.Create(context.Background(), "driver1", &CreateReportRequest{
		Title:        "",
		Description:  "Mô tả",
		Latitude:     10.7,
		Longitude:    106.7,
		ReportTypeID: "t1",
	})

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Create() error = %v, want ValidationErrors", err)
	}
}

func TestReportService_GetByID_DriverCannotReadOthers(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)
	repo.reports["r1"] = &models.Report{ID: "r1", UserID: "driver1", Status: models.StatusPending}

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	_, err := svc.GetByID(context.Background(), "other-driver", models.RoleDriver, "r1")
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Errorf("GetByID() error = %v, want PermissionError", err)
	}

	// Moderators may read any report.
	if _, err := svc.GetByID(context.Background(), "mod1", models.RoleModerator, "r1"); err != nil {
		t.Errorf("GetByID() as moderator error = %v", err)
	}
}

func TestReportService_Decide_ApproveCreditsPoints(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)
	repo.reports["r1"] = &models.Report{ID: "r1", UserID: "driver1", Status: models.StatusPending}
	repo.rewards = append(repo.rewards, &models.PointRewardVersion{ID: 1, Amount: 500, StartDate: time.Now()})

	publisher := events.NewMockEventPublisher(testLogger())
	svc := newTestReportService(repo, &stubGeocoder{}, publisher)

	resp, err := svc.Decide(context.Background(), "mod1", "r1", &DecideReportRequest{Approved: true})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if resp.Status != models.StatusApproved {
		t.Errorf("status = %s, want APPROVED", resp.Status)
	}
	if resp.ModeratorID == nil || *resp.ModeratorID != "mod1" {
		t.Errorf("moderator_id = %v, want mod1", resp.ModeratorID)
	}
	if resp.PointsAwarded == nil || *resp.PointsAwarded != 500 {
		t.Errorf("points_awarded = %v, want 500", resp.PointsAwarded)
	}
	if repo.users["driver1"].Points != 500 {
		t.Errorf("owner points = %d, want 500", repo.users["driver1"].Points)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.ReportApproved {
		t.Errorf("published events = %v, want one report.approved", published)
	}
}

func TestReportService_Decide_ApproveWithoutReward(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)
	repo.reports["r1"] = &models.Report{ID: "r1", UserID: "driver1", Status: models.StatusPending}

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	resp, err := svc.Decide(context.Background(), "mod1", "r1", &DecideReportRequest{Approved: true})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if resp.PointsAwarded == nil || *resp.PointsAwarded != 0 {
		t.Errorf("points_awarded = %v, want 0 when no reward is configured", resp.PointsAwarded)
	}
	if repo.users["driver1"].Points != 0 {
		t.Errorf("owner points = %d, want 0", repo.users["driver1"].Points)
	}
}

func TestReportService_Decide_RejectRequiresReason(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)
	repo.reports["r1"] = &models.Report{ID: "r1", UserID: "driver1", Status: models.StatusPending}

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	_, err := svc.Decide(context.Background(), "mod1", "r1", &DecideReportRequest{Approved: false})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Decide() error = %v, want ValidationErrors", err)
	}

	if repo.reports["r1"].Status != models.StatusPending {
		t.Errorf("status = %s, report must stay PENDING after a rejected decision request", repo.reports["r1"].Status)
	}
}

func TestReportService_Decide_RejectKeepsReason(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)
	repo.reports["r1"] = &models.Report{ID: "r1", UserID: "driver1", Status: models.StatusPending}

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	resp, err := svc.Decide(context.Background(), "mod1", "r1", &DecideReportRequest{
		Approved:        false,
		RejectionReason: strPtr("cầu hỏng đã được báo cáo trước đó"),
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if resp.Status != models.StatusRejected {
		t.Errorf("status = %s, want REJECTED", resp.Status)
	}
	if resp.RejectionReason == nil || *resp.RejectionReason != "cầu hỏng đã được báo cáo trước đó" {
		t.Errorf("rejection_reason = %v, want the submitted reason unchanged", resp.RejectionReason)
	}
	if repo.users["driver1"].Points != 0 {
		t.Errorf("owner points = %d, rejection must not credit points", repo.users["driver1"].Points)
	}
}

func TestReportService_Decide_OneShot(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)
	repo.reports["r1"] = &models.Report{ID: "r1", UserID: "driver1", Status: models.StatusApproved}

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	_, err := svc.Decide(context.Background(), "mod1", "r1", &DecideReportRequest{
		Approved:        false,
		RejectionReason: strPtr("đổi ý"),
	})

	var ruleErr *BusinessRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("Decide() error = %v, want BusinessRuleError", err)
	}
	if repo.reports["r1"].Status != models.StatusApproved {
		t.Errorf("status = %s, decided reports are immutable", repo.reports["r1"].Status)
	}
}

func TestReportService_Decide_NotFound(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	_, err := svc.Decide(context.Background(), "mod1", "missing", &DecideReportRequest{Approved: true})
	if !errors.Is(err, ErrReportNotFound) {
		t.Errorf("Decide() error = %v, want ErrReportNotFound", err)
	}
}

func TestReportService_ListForModeration_Pagination(t *testing.T) {
	repo := newMockRepository()
	seedMockData(repo)
	for i := 0; i < 25; i++ {
		id := string(rune('a' + i))
		repo.reports[id] = &models.Report{
			ID:          id,
			Title:       "Báo cáo " + id,
			Description: "Mô tả",
			UserID:      "driver1",
			Status:      models.StatusPending,
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Minute),
		}
	}

	svc := newTestReportService(repo, &stubGeocoder{}, events.NewMockEventPublisher(testLogger()))

	resp, err := svc.ListForModeration(context.Background(), &ListReportsRequest{Page: 2, Size: 10})
	if err != nil {
		t.Fatalf("ListForModeration() error = %v", err)
	}

	if resp.Total != 25 {
		t.Errorf("total = %d, want 25", resp.Total)
	}
	if len(resp.Reports) != 10 {
		t.Errorf("page length = %d, want 10", len(resp.Reports))
	}
	if resp.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", resp.TotalPages)
	}
}
