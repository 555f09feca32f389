package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relieftrack/pkg/domain"
)

func testAlert() Alert {
	return Alert{
		Name:         "Ada Lovelace",
		Department:   "Engineering",
		Location:     "Sector 7",
		SafetyStatus: domain.SafetyInNeed,
		Supplies:     []domain.SupplyKind{domain.SupplyFood, domain.SupplyMedical},
		Notes:        "bridge is out",
	}
}

func TestAlertText(t *testing.T) {
	text := testAlert().Text()
	for _, want := range []string{
		"Ada Lovelace", "Engineering", "Sector 7", "In Need of Help",
		"Food, Medical Kit", "bridge is out",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("alert text missing %q:\n%s", want, text)
		}
	}

	bare := Alert{Name: "Ada"}
	if !strings.Contains(bare.Text(), "Supplies needed: none") {
		t.Fatalf("empty supply set should render as none:\n%s", bare.Text())
	}
}

func TestFromRecordCopiesSupplies(t *testing.T) {
	r := domain.RequestRecord{Name: "Ada", Supplies: []domain.SupplyKind{domain.SupplyFood}}
	alert := FromRecord(r)
	alert.Supplies[0] = domain.SupplyWater
	if r.Supplies[0] != domain.SupplyFood {
		t.Fatalf("alert construction must not alias the record's supply slice")
	}
}

type flakyNotifier struct {
	calls int
	err   error
}

func (n *flakyNotifier) Notify(context.Context, []string, Alert) error {
	n.calls++
	return n.err
}

func TestMultiAttemptsAllTargets(t *testing.T) {
	bad := &flakyNotifier{err: errors.New("smtp down")}
	good := &flakyNotifier{}
	m := Multi{bad, good}

	err := m.Notify(context.Background(), []string{"ops@example.com"}, testAlert())
	if err == nil {
		t.Fatalf("expected the failure to surface")
	}
	if bad.calls != 1 || good.calls != 1 {
		t.Fatalf("every target must be attempted: bad=%d good=%d", bad.calls, good.calls)
	}
}

func TestMailerSendsPerRecipient(t *testing.T) {
	var sent [][]string
	m := NewMailer("smtp.example.com", "587", "relief@example.com", "pw")
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if addr != "smtp.example.com:587" || from != "relief@example.com" {
			t.Fatalf("unexpected connection params: %s %s", addr, from)
		}
		if !strings.Contains(string(msg), "Emergency Supply Request") {
			t.Fatalf("message missing subject:\n%s", msg)
		}
		sent = append(sent, to)
		return nil
	}

	err := m.Notify(context.Background(), []string{"a@example.com", "b@example.com"}, testAlert())
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("expected one message per recipient, got %d", len(sent))
	}
}

func TestMailerJoinsFailures(t *testing.T) {
	m := NewMailer("smtp.example.com", "587", "relief@example.com", "pw")
	m.sendMail = func(_ string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		if to[0] == "bad@example.com" {
			return errors.New("mailbox full")
		}
		return nil
	}
	err := m.Notify(context.Background(), []string{"bad@example.com", "good@example.com"}, testAlert())
	if err == nil || !strings.Contains(err.Error(), "bad@example.com") {
		t.Fatalf("expected the per-recipient failure to surface, got %v", err)
	}
}

type fakeTelegram struct {
	chats []int64
	err   error
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.chats = append(f.chats, msg.ChatID)
	}
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotify(t *testing.T) {
	fake := &fakeTelegram{}
	tg := NewTelegramWithSender(fake)

	err := tg.Notify(context.Background(), []string{"12345", "-6789"}, testAlert())
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fake.chats) != 2 || fake.chats[0] != 12345 || fake.chats[1] != -6789 {
		t.Fatalf("unexpected chat ids: %v", fake.chats)
	}
}

func TestTelegramRejectsNonNumericRecipient(t *testing.T) {
	fake := &fakeTelegram{}
	tg := NewTelegramWithSender(fake)

	err := tg.Notify(context.Background(), []string{"ops@example.com", "777"}, testAlert())
	if err == nil {
		t.Fatalf("non-numeric recipients must be reported")
	}
	if len(fake.chats) != 1 || fake.chats[0] != 777 {
		t.Fatalf("valid recipients must still be attempted: %v", fake.chats)
	}
}
