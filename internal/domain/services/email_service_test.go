package services

import (
	"errors"
	"testing"

	"gopkg.in/gomail.v2"
)

// stubSender 记录投递的邮件，可配置为失败
type stubSender struct {
	messages []*gomail.Message
	err      error
}

func (s *stubSender) DialAndSend(m ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, m...)
	return nil
}

func newTestEmailService(sender *stubSender) *EmailService {
	return &EmailService{
		Config: testConfig(),
		Sender: sender,
	}
}

func sampleMailData() *AppointmentMailData {
	return &AppointmentMailData{
		Reference:   "ref-123",
		ClientName:  "张伟",
		ClientEmail: "zhangwei@example.com",
		ClientPhone: "13800138000",
		Date:        "2026-09-15 10:00",
		ServiceType: "test_drive",
	}
}

func TestNotifyOwnerOfNewRequest_OK(t *testing.T) {
	sender := &stubSender{}
	svc := newTestEmailService(sender)

	if ok := svc.NotifyOwnerOfNewRequest(sampleMailData()); !ok {
		t.Fatalf("expected send to succeed")
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.messages))
	}

	to := sender.messages[0].GetHeader("To")
	if len(to) != 1 || to[0] != svc.Config.OwnerEmail {
		t.Fatalf("owner alert must go to the owner, got %v", to)
	}
}

func TestNotifyClientOfReceipt_OK(t *testing.T) {
	sender := &stubSender{}
	svc := newTestEmailService(sender)
	data := sampleMailData()

	if ok := svc.NotifyClientOfReceipt(data); !ok {
		t.Fatalf("expected send to succeed")
	}
	to := sender.messages[0].GetHeader("To")
	if len(to) != 1 || to[0] != data.ClientEmail {
		t.Fatalf("receipt must go to the client, got %v", to)
	}
}

func TestSend_FailureReturnsFalse(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp unreachable")}
	svc := newTestEmailService(sender)

	if ok := svc.NotifyClientOfConfirmation(sampleMailData()); ok {
		t.Fatalf("expected send to report failure")
	}
}

func TestSend_EmptyRecipientSkipped(t *testing.T) {
	sender := &stubSender{}
	svc := newTestEmailService(sender)
	svc.Config.OwnerEmail = ""

	if ok := svc.NotifyOwnerOfNewRequest(sampleMailData()); ok {
		t.Fatalf("expected send to be skipped without a recipient")
	}
	if len(sender.messages) != 0 {
		t.Fatalf("no message should have been delivered")
	}
}

func TestNotifyClientOfCancellation_CarriesAdminMessage(t *testing.T) {
	sender := &stubSender{}
	svc := newTestEmailService(sender)

	reason := "车辆暂不可用"
	data := sampleMailData()
	data.AdminMessage = &reason

	if ok := svc.NotifyClientOfCancellation(data); !ok {
		t.Fatalf("expected send to succeed")
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.messages))
	}
}
