package modem

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func TestSmsMessageAttributes(t *testing.T) {
	bus := newFakeBus()
	path := bus.addSms(1, smsProperties(uint32(SmsStateReceived), "+491701234567", "Hallo Welt", "2024-01-15T09:30:00+01:00"))

	message := NewSmsMessage(context.Background(), bus, path)

	if got := message.Number(); got != "+491701234567" {
		t.Errorf("Number() = %q, want %q", got, "+491701234567")
	}
	if got := message.Text(); got != "Hallo Welt" {
		t.Errorf("Text() = %q, want %q", got, "Hallo Welt")
	}
	if got := message.State(); got != SmsStateReceived {
		t.Errorf("State() = %v, want %v", got, SmsStateReceived)
	}
	if got := message.Timestamp(); got != "2024-01-15T09:30:00+01:00" {
		t.Errorf("Timestamp() = %q, want %q", got, "2024-01-15T09:30:00+01:00")
	}

	receivedAt, ok := message.ReceivedAt()
	if !ok {
		t.Fatal("ReceivedAt() reported no timestamp")
	}
	want := time.Date(2024, 1, 15, 9, 30, 0, 0, time.FixedZone("", 3600))
	if !receivedAt.Equal(want) {
		t.Errorf("ReceivedAt() = %v, want %v", receivedAt, want)
	}
}

func TestSmsMessageMissingState(t *testing.T) {
	bus := newFakeBus()
	path := bus.addSms(2, map[string]dbus.Variant{
		"Number": dbus.MakeVariant("+49"),
		"Text":   dbus.MakeVariant("no state"),
	})

	message := NewSmsMessage(context.Background(), bus, path)
	if got := message.State(); got != SmsStateUnknown {
		t.Errorf("State() = %v, want %v", got, SmsStateUnknown)
	}
}

func TestSmsMessageReceivedAtAbsent(t *testing.T) {
	bus := newFakeBus()

	cases := []struct {
		name      string
		timestamp string
	}{
		{name: "missing", timestamp: ""},
		{name: "unparseable", timestamp: "gestern"},
	}
	for index, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			path := bus.addSms(10+index, smsProperties(uint32(SmsStateReceived), "+49", "x", testCase.timestamp))
			message := NewSmsMessage(context.Background(), bus, path)
			if _, ok := message.ReceivedAt(); ok {
				t.Errorf("ReceivedAt() reported ok for timestamp %q", testCase.timestamp)
			}
		})
	}
}

func TestParseSmsTimestamp(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{
			name: "rfc3339",
			raw:  "2024-01-01T10:00:00+01:00",
			want: time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("", 3600)),
		},
		{
			name: "offset without colon",
			raw:  "2024-01-01T10:00:00+0100",
			want: time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("", 3600)),
		},
		{
			name: "no zone",
			raw:  "2024-01-01T10:00:00",
			want: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "fractional seconds",
			raw:  "2024-01-01T10:00:00.500+01:00",
			want: time.Date(2024, 1, 1, 10, 0, 0, 500000000, time.FixedZone("", 3600)),
		},
		{
			name:    "garbage",
			raw:     "gestern",
			wantErr: true,
		},
		{
			name:    "date only",
			raw:     "2024-01-01",
			wantErr: true,
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := parseSmsTimestamp(testCase.raw)
			if testCase.wantErr {
				if err == nil {
					t.Fatalf("parseSmsTimestamp(%q) expected an error", testCase.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSmsTimestamp(%q) error = %v", testCase.raw, err)
			}
			if !got.Equal(testCase.want) {
				t.Errorf("parseSmsTimestamp(%q) = %v, want %v", testCase.raw, got, testCase.want)
			}
		})
	}
}

func TestSmsStateString(t *testing.T) {
	cases := []struct {
		state SmsState
		want  string
	}{
		{state: SmsStateUnknown, want: "unknown"},
		{state: SmsStateStored, want: "stored"},
		{state: SmsStateReceiving, want: "receiving"},
		{state: SmsStateReceived, want: "received"},
		{state: SmsStateSending, want: "sending"},
		{state: SmsStateSent, want: "sent"},
		{state: SmsState(42), want: "unknown(42)"},
	}
	for _, testCase := range cases {
		if got := testCase.state.String(); got != testCase.want {
			t.Errorf("SmsState(%d).String() = %q, want %q", int64(testCase.state), got, testCase.want)
		}
	}
}
