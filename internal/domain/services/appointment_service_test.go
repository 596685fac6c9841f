package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/infrastructure/config"
)

// newTestDB 创建一个独立的内存数据库并完成迁移
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(&models.Admin{}, &models.Vehicle{}, &models.Appointment{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey: "test-secret-key",
		MailFrom:     "noreply@autolot.test",
		OwnerEmail:   "owner@autolot.test",
	}
}

// mailRecorder 记录邮件调用的测试替身
type mailRecorder struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (m *mailRecorder) record(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	return !m.fail
}

func (m *mailRecorder) NotifyOwnerOfNewRequest(data *AppointmentMailData) bool {
	return m.record("owner-alert")
}

func (m *mailRecorder) NotifyClientOfReceipt(data *AppointmentMailData) bool {
	return m.record("client-receipt")
}

func (m *mailRecorder) NotifyClientOfConfirmation(data *AppointmentMailData) bool {
	return m.record("client-confirmation")
}

func (m *mailRecorder) NotifyClientOfCancellation(data *AppointmentMailData) bool {
	return m.record("client-cancellation")
}

func (m *mailRecorder) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func newTestAppointmentService(t *testing.T) (*AppointmentService, *gorm.DB, *mailRecorder) {
	t.Helper()
	db := newTestDB(t)
	recorder := &mailRecorder{}
	svc := NewAppointmentService(db, testConfig(), recorder).(*AppointmentService)
	return svc, db, recorder
}

// insertAppointment 直接写入一条预约记录，绕过创建校验
func insertAppointment(t *testing.T, db *gorm.DB, status models.AppointmentStatus, date time.Time) *models.Appointment {
	t.Helper()

	appointment := &models.Appointment{
		Reference:       uuid.NewString(),
		ClientName:      "测试客户",
		ClientEmail:     "client@example.com",
		ClientPhone:     "13800138000",
		AppointmentDate: date,
		ServiceType:     "test_drive",
		Status:          status,
	}
	if err := db.Create(appointment).Error; err != nil {
		t.Fatalf("insert appointment: %v", err)
	}
	return appointment
}

func futureDate(hour int) time.Time {
	day := time.Now().AddDate(0, 0, 7)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.Local)
}

func validCreateInput() *CreateAppointmentInput {
	return &CreateAppointmentInput{
		ClientName:      "张伟",
		ClientEmail:     "zhangwei@example.com",
		ClientPhone:     "13800138000",
		AppointmentDate: futureDate(10).Format(time.RFC3339),
		ServiceType:     "test_drive",
	}
}

func TestCreateAppointment_OK(t *testing.T) {
	svc, _, recorder := newTestAppointmentService(t)

	appointment, err := svc.CreateAppointment(validCreateInput())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if appointment.Status != models.AppointmentStatusPending {
		t.Fatalf("expected status pending, got %s", appointment.Status)
	}
	if appointment.Reference == "" {
		t.Fatalf("expected reference to be assigned")
	}

	// 新预约应触发负责人提醒和客户回执两封邮件
	svc.WaitForMailTasks()
	sent := recorder.sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 mail tasks, got %d: %v", len(sent), sent)
	}
	seen := map[string]bool{}
	for _, call := range sent {
		seen[call] = true
	}
	if !seen["owner-alert"] || !seen["client-receipt"] {
		t.Fatalf("expected owner-alert and client-receipt, got %v", sent)
	}
}

func TestCreateAppointment_MailFailureDoesNotSurface(t *testing.T) {
	svc, _, recorder := newTestAppointmentService(t)
	recorder.fail = true

	if _, err := svc.CreateAppointment(validCreateInput()); err != nil {
		t.Fatalf("mail failure must not surface, got %v", err)
	}
	svc.WaitForMailTasks()
}

func TestCreateAppointment_FieldsMissing(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	input := validCreateInput()
	input.ClientName = ""
	if _, err := svc.CreateAppointment(input); !errors.Is(err, ErrAppointmentFieldsMissing) {
		t.Fatalf("expected ErrAppointmentFieldsMissing, got %v", err)
	}

	input = validCreateInput()
	input.ServiceType = ""
	if _, err := svc.CreateAppointment(input); !errors.Is(err, ErrAppointmentFieldsMissing) {
		t.Fatalf("expected ErrAppointmentFieldsMissing, got %v", err)
	}
}

func TestCreateAppointment_EmailInvalid(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	for _, email := range []string{"not-an-email", "a b@example.com", "a@b", "@example.com"} {
		input := validCreateInput()
		input.ClientEmail = email
		if _, err := svc.CreateAppointment(input); !errors.Is(err, ErrAppointmentEmailInvalid) {
			t.Fatalf("email %q: expected ErrAppointmentEmailInvalid, got %v", email, err)
		}
	}
}

func TestCreateAppointment_DateInvalid(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	input := validCreateInput()
	input.AppointmentDate = "下周二上午"
	if _, err := svc.CreateAppointment(input); !errors.Is(err, ErrAppointmentDateInvalid) {
		t.Fatalf("expected ErrAppointmentDateInvalid, got %v", err)
	}
}

func TestCreateAppointment_DatePast(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	input := validCreateInput()
	input.AppointmentDate = time.Now().AddDate(0, 0, -1).Format(time.RFC3339)
	if _, err := svc.CreateAppointment(input); !errors.Is(err, ErrAppointmentDatePast) {
		t.Fatalf("expected ErrAppointmentDatePast, got %v", err)
	}
}

func TestCreateAppointment_UnknownVehicle(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	missing := uint(9999)
	input := validCreateInput()
	input.VehicleID = &missing
	if _, err := svc.CreateAppointment(input); !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestCreateAppointment_WithVehicle(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)

	vehicle := &models.Vehicle{Make: "Porsche", Model: "Cayenne", Year: 2022}
	if err := db.Create(vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	input := validCreateInput()
	input.VehicleID = &vehicle.ID
	appointment, err := svc.CreateAppointment(input)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if appointment.Vehicle == nil || appointment.Vehicle.ID != vehicle.ID {
		t.Fatalf("expected vehicle to be attached")
	}

	// 车辆摘要用于预约详情响应
	summary := appointment.Vehicle.Summary()
	if summary["id"] != vehicle.ID || summary["make"] != "Porsche" || summary["model"] != "Cayenne" {
		t.Fatalf("unexpected vehicle summary: %v", summary)
	}
	svc.WaitForMailTasks()
}

func TestApplyAction_Confirm(t *testing.T) {
	svc, db, recorder := newTestAppointmentService(t)
	appointment := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))

	updated, err := svc.ApplyAction(appointment.ID, "confirm", nil)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if updated.Status != models.AppointmentStatusConfirmed {
		t.Fatalf("expected status confirmed, got %s", updated.Status)
	}
	if updated.ConfirmedAt == nil {
		t.Fatalf("expected confirmed_at to be set")
	}

	svc.WaitForMailTasks()
	sent := recorder.sent()
	if len(sent) != 1 || sent[0] != "client-confirmation" {
		t.Fatalf("expected client-confirmation mail, got %v", sent)
	}
}

func TestApplyAction_Cancel(t *testing.T) {
	svc, db, recorder := newTestAppointmentService(t)
	appointment := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))

	reason := "车辆暂不可用"
	updated, err := svc.ApplyAction(appointment.ID, "cancel", &reason)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if updated.Status != models.AppointmentStatusCancelled {
		t.Fatalf("expected status cancelled, got %s", updated.Status)
	}
	if updated.CancelledAt == nil {
		t.Fatalf("expected cancelled_at to be set")
	}
	if updated.AdminNotes == nil || *updated.AdminNotes != reason {
		t.Fatalf("expected admin notes %q, got %v", reason, updated.AdminNotes)
	}

	svc.WaitForMailTasks()
	sent := recorder.sent()
	if len(sent) != 1 || sent[0] != "client-cancellation" {
		t.Fatalf("expected client-cancellation mail, got %v", sent)
	}
}

func TestApplyAction_CompleteAndReschedule(t *testing.T) {
	svc, db, recorder := newTestAppointmentService(t)

	completed := insertAppointment(t, db, models.AppointmentStatusConfirmed, futureDate(10))
	updated, err := svc.ApplyAction(completed.ID, "complete", nil)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if updated.Status != models.AppointmentStatusCompleted || updated.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %s", updated.Status)
	}

	rescheduled := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(11))
	updated, err = svc.ApplyAction(rescheduled.ID, "reschedule", nil)
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if updated.Status != models.AppointmentStatusRescheduled {
		t.Fatalf("expected status rescheduled, got %s", updated.Status)
	}
	// reschedule 不设置任何时间戳
	if updated.ConfirmedAt != nil || updated.CancelledAt != nil || updated.CompletedAt != nil {
		t.Fatalf("reschedule must not set timestamps")
	}

	// complete 和 reschedule 均不发送邮件
	svc.WaitForMailTasks()
	if sent := recorder.sent(); len(sent) != 0 {
		t.Fatalf("expected no mail, got %v", sent)
	}
}

func TestApplyAction_RestoreClearsTimestamps(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)
	appointment := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))

	if _, err := svc.ApplyAction(appointment.ID, "confirm", nil); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.ApplyAction(appointment.ID, "complete", nil); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	updated, err := svc.ApplyAction(appointment.ID, "restore", nil)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if updated.Status != models.AppointmentStatusPending {
		t.Fatalf("expected status pending after restore, got %s", updated.Status)
	}
	if updated.ConfirmedAt != nil || updated.CancelledAt != nil || updated.CompletedAt != nil {
		t.Fatalf("restore must clear all status timestamps")
	}
	svc.WaitForMailTasks()
}

func TestApplyAction_NotesPreservedWithoutMessage(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)
	appointment := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))

	note := "客户要求上午到店"
	if _, err := svc.ApplyAction(appointment.ID, "confirm", &note); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// 未携带留言的后续操作必须保留原有备注
	updated, err := svc.ApplyAction(appointment.ID, "complete", nil)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if updated.AdminNotes == nil || *updated.AdminNotes != note {
		t.Fatalf("expected admin notes preserved, got %v", updated.AdminNotes)
	}
	svc.WaitForMailTasks()
}

func TestApplyAction_InvalidAction(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)
	appointment := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))

	if _, err := svc.ApplyAction(appointment.ID, "approve", nil); !errors.Is(err, ErrAppointmentActionInvalid) {
		t.Fatalf("expected ErrAppointmentActionInvalid, got %v", err)
	}
}

func TestApplyAction_NotFound(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	if _, err := svc.ApplyAction(9999, "confirm", nil); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestApplyAction_ConfirmSlotConflict(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)

	date := futureDate(10)
	first := insertAppointment(t, db, models.AppointmentStatusPending, date)
	second := insertAppointment(t, db, models.AppointmentStatusPending, date)
	other := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(14))

	if _, err := svc.ApplyAction(first.ID, "confirm", nil); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}

	// 同一天同一时间段的第二次确认必须被拒绝
	if _, err := svc.ApplyAction(second.ID, "confirm", nil); !errors.Is(err, ErrAppointmentSlotOccupied) {
		t.Fatalf("expected ErrAppointmentSlotOccupied, got %v", err)
	}

	// 其他时间段不受影响
	if _, err := svc.ApplyAction(other.ID, "confirm", nil); err != nil {
		t.Fatalf("confirm on a free slot failed: %v", err)
	}

	// 被拒绝的预约保持pending
	var check models.Appointment
	if err := db.First(&check, second.ID).Error; err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if check.Status != models.AppointmentStatusPending {
		t.Fatalf("conflicting appointment must stay pending, got %s", check.Status)
	}
	svc.WaitForMailTasks()
}

func TestGetDayAvailability(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)

	date := futureDate(10)
	insertAppointment(t, db, models.AppointmentStatusConfirmed, date)
	// 未确认的预约不占用时间段
	insertAppointment(t, db, models.AppointmentStatusPending, futureDate(11))
	insertAppointment(t, db, models.AppointmentStatusCancelled, futureDate(14))

	availability, err := svc.GetDayAvailability(date.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}

	if availability.TotalSlots != len(BookableTimeSlots) {
		t.Fatalf("expected %d total slots, got %d", len(BookableTimeSlots), availability.TotalSlots)
	}
	if len(availability.OccupiedTimeSlots) != 1 || availability.OccupiedTimeSlots[0].Time != "10:00" {
		t.Fatalf("expected only 10:00 occupied, got %+v", availability.OccupiedTimeSlots)
	}
	if availability.AvailableSlots != len(BookableTimeSlots)-1 {
		t.Fatalf("expected %d available slots, got %d", len(BookableTimeSlots)-1, availability.AvailableSlots)
	}

	// 可用与占用时间段互不相交，并集为全部时间段
	occupied := map[string]bool{}
	for _, slot := range availability.OccupiedTimeSlots {
		occupied[slot.Time] = true
	}
	for _, slot := range availability.AvailableTimeSlots {
		if occupied[slot] {
			t.Fatalf("slot %s is both available and occupied", slot)
		}
	}
	if len(availability.AvailableTimeSlots)+len(availability.OccupiedTimeSlots) != len(BookableTimeSlots) {
		t.Fatalf("available and occupied slots must cover the catalog")
	}
}

func TestGetDayAvailability_EmptyDay(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	availability, err := svc.GetDayAvailability("2031-06-02")
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	if availability.AvailableSlots != len(BookableTimeSlots) {
		t.Fatalf("expected all slots available, got %d", availability.AvailableSlots)
	}
	if len(availability.OccupiedTimeSlots) != 0 {
		t.Fatalf("expected no occupied slots, got %+v", availability.OccupiedTimeSlots)
	}
}

func TestGetDayAvailability_InvalidDate(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)

	if _, err := svc.GetDayAvailability("02/06/2031"); !errors.Is(err, ErrAppointmentDateInvalid) {
		t.Fatalf("expected ErrAppointmentDateInvalid, got %v", err)
	}
}

func TestGetAllAppointments_FilterAndPagination(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)

	for i := 0; i < 3; i++ {
		insertAppointment(t, db, models.AppointmentStatusPending, futureDate(9+i))
	}
	insertAppointment(t, db, models.AppointmentStatusConfirmed, futureDate(14))

	all, total, err := svc.GetAllAppointments("", 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Fatalf("expected 4 appointments, got total=%d len=%d", total, len(all))
	}

	pending, total, err := svc.GetAllAppointments("pending", 1, 2)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 pending, got %d", total)
	}
	if len(pending) != 2 {
		t.Fatalf("expected page of 2, got %d", len(pending))
	}

	secondPage, _, err := svc.GetAllAppointments("pending", 2, 2)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(secondPage) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(secondPage))
	}
}

func TestGetAllAppointments_InvalidStatusFilter(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)
	insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))

	if _, _, err := svc.GetAllAppointments("archived", 1, 10); !errors.Is(err, ErrAppointmentStatusInvalid) {
		t.Fatalf("expected ErrAppointmentStatusInvalid, got %v", err)
	}

	// 合法状态逐个放行
	for _, status := range models.AllAppointmentStatuses {
		if _, _, err := svc.GetAllAppointments(string(status), 1, 10); err != nil {
			t.Fatalf("status %q must be accepted: %v", status, err)
		}
	}
}

func TestDayWindow_DSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	original := time.Local
	time.Local = loc
	defer func() { time.Local = original }()

	// 2026-03-08 夏令时开始，当天只有23小时
	start, end := dayWindow(time.Date(2026, 3, 8, 10, 0, 0, 0, loc))
	if start.Day() != 8 || start.Hour() != 0 {
		t.Fatalf("unexpected spring window start: %v", start)
	}
	if end.Day() != 8 || end.Hour() != 23 || end.Minute() != 59 {
		t.Fatalf("spring window end must stay on the same day: %v", end)
	}

	// 2026-11-01 夏令时结束，当天有25小时
	_, end = dayWindow(time.Date(2026, 11, 1, 10, 0, 0, 0, loc))
	if end.Day() != 1 || end.Hour() != 23 || end.Minute() != 59 {
		t.Fatalf("fall window end must cover the full day: %v", end)
	}
}

func TestDeleteAppointment(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)
	appointment := insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))

	if err := svc.DeleteAppointment(appointment.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteAppointment(appointment.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestGetAppointmentStatistics(t *testing.T) {
	svc, db, _ := newTestAppointmentService(t)

	insertAppointment(t, db, models.AppointmentStatusPending, futureDate(9))
	insertAppointment(t, db, models.AppointmentStatusPending, futureDate(10))
	insertAppointment(t, db, models.AppointmentStatusConfirmed, futureDate(11))
	insertAppointment(t, db, models.AppointmentStatusCancelled, futureDate(14))
	insertAppointment(t, db, models.AppointmentStatusCompleted, futureDate(15))

	stats, err := svc.GetAppointmentStatistics()
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.Total != 5 {
		t.Fatalf("expected total 5, got %d", stats.Total)
	}
	if stats.Pending != 2 || stats.Confirmed != 1 || stats.Cancelled != 1 || stats.Completed != 1 || stats.Rescheduled != 0 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}
