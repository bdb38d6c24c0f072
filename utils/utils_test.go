package utils

import (
	"bytes"
	"context"
	"io"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/realtime"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 32 {
		t.Fatalf("expected 32 hex characters, got %q", code)
	}
	other, _ := GenerateCode(16)
	if code == other {
		t.Fatal("codes should differ")
	}
}

func TestNewOrderID(t *testing.T) {
	id, err := NewOrderID()
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 10 {
		t.Fatalf("expected 10 characters, got %q", id)
	}
	for _, r := range id {
		if !strings.ContainsRune(orderIDAlphabet, r) {
			t.Fatalf("unexpected character %q in %q", r, id)
		}
	}
}

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T) (*Mailer, *[]sentMail) {
	t.Helper()
	m, err := NewMailer(MailConfig{From: "shop@example.com", Address: "smtp.example.com:587", SMTPHost: "smtp.example.com", StoreName: "Goutam Store"})
	if err != nil {
		t.Fatal(err)
	}
	var sent []sentMail
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return m, &sent
}

func TestSendOrderConfirmation(t *testing.T) {
	m, sent := newTestMailer(t)
	order := models.Order{
		ID: "doc-1", OrderID: "AbC123xYz0", Total: 140,
		Items: []models.OrderItem{
			{Product: models.OrderProduct{Name: models.LocalizedText{En: "Atta"}, Price: 55, Unit: models.UnitKilogram}, Quantity: 2},
			{Product: models.OrderProduct{Name: models.LocalizedText{En: "Soap"}, Price: 30, Unit: models.UnitPiece}, Quantity: 1},
		},
	}
	if err := m.SendOrderConfirmation(models.UserProfile{Name: "Asha", Email: "asha@example.com"}, order, "http://shop/invoice/doc-1"); err != nil {
		t.Fatal(err)
	}
	if len(*sent) != 1 {
		t.Fatalf("expected one email, got %d", len(*sent))
	}
	got := (*sent)[0]
	for _, want := range []string{"Subject: Order AbC123xYz0 confirmed", "Goutam Store", "Atta x 2 kg", "₹110.00", "₹140.00", "http://shop/invoice/doc-1"} {
		if !strings.Contains(got.msg, want) {
			t.Errorf("email missing %q", want)
		}
	}
	if got.to[0] != "asha@example.com" || got.addr != "smtp.example.com:587" {
		t.Fatalf("unexpected envelope %+v", got)
	}
}

func TestUnconfiguredMailerRefuses(t *testing.T) {
	m, err := NewMailer(MailConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SendPasswordReset(models.UserProfile{Email: "a@example.com"}, "http://x"); err == nil {
		t.Fatal("expected an error without SMTP settings")
	}
}

type fakeUploader struct {
	got []byte
	key string
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.got = b
	f.key = *in.Key
	return &manager.UploadOutput{Location: "https://bucket.example.com/" + *in.Key}, nil
}

func TestImageUploadPublishesProgress(t *testing.T) {
	hub := realtime.NewHub(nil)
	sub := hub.Subscribe(realtime.TopicUploads)
	defer sub.Close()

	up := &fakeUploader{}
	images := NewImageStore(up, "goutam", hub)
	images.now = func() time.Time { return time.UnixMilli(1700000000000) }

	key := images.UserImageKey("u1", "my photo.png")
	if key != "users/u1/1700000000000-my-photo.png" {
		t.Fatalf("unexpected key %q", key)
	}
	body := bytes.Repeat([]byte("x"), 1000)
	url, err := images.Upload(context.Background(), key, bytes.NewReader(body), int64(len(body)), "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://bucket.example.com/"+key || len(up.got) != 1000 {
		t.Fatalf("unexpected upload %q (%d bytes)", url, len(up.got))
	}

	var last UploadProgress
	prev := -1
	for len(sub.Events()) > 0 {
		evt := <-sub.Events()
		p := evt.Data.(UploadProgress)
		if p.Percent < prev {
			t.Fatalf("progress went backwards: %d after %d", p.Percent, prev)
		}
		prev = p.Percent
		last = p
	}
	if last.Percent != 100 || last.URL != url {
		t.Fatalf("final progress %+v", last)
	}
}

func TestUnconfiguredImageStore(t *testing.T) {
	images := NewImageStore(nil, "", nil)
	if _, err := images.Upload(context.Background(), "k", strings.NewReader("x"), 1, "image/png"); err == nil {
		t.Fatal("expected an error")
	}
}
