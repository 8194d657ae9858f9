package broadcast

import (
	"testing"
	"time"

	"mudengine/internal/session"
)

type fakeIO struct{ out []string }

func (f *fakeIO) ReadLine(time.Duration) (string, bool) { return "", false }
func (f *fakeIO) WriteLine(text string)                 { f.out = append(f.out, text) }
func (f *fakeIO) EnableEcho()                           {}
func (f *fakeIO) DisableEcho()                          {}
func (f *fakeIO) Close(string)                          {}

func newAuthedSession(id, username string, x, y int) (*session.Session, *fakeIO) {
	io := &fakeIO{}
	s := session.New(id, io, "")
	s.Authenticate("pid-"+id, username, false, "en", x, y)
	return s, io
}

func TestBroadcastToRoomReachesOnlyThatRoom(t *testing.T) {
	reg := session.NewRegistry(nil, time.Minute, time.Minute, nil)
	inRoom, ioA := newAuthedSession("a", "Alice", 1, 1)
	elsewhere, ioB := newAuthedSession("b", "Bob", 2, 2)
	reg.Add(inRoom)
	reg.Add(elsewhere)

	r := New(reg, nil)
	r.BroadcastToRoom(1, 1, "room.enter", map[string]any{"player": "Mentor"}, nil)

	if len(ioA.out) != 1 {
		t.Fatalf("expected Alice to receive one line, got %d", len(ioA.out))
	}
	if len(ioB.out) != 0 {
		t.Fatalf("expected Bob to receive nothing, got %v", ioB.out)
	}
}

func TestBroadcastToRoomExcludesGivenSession(t *testing.T) {
	reg := session.NewRegistry(nil, time.Minute, time.Minute, nil)
	s1, io1 := newAuthedSession("a", "Alice", 1, 1)
	s2, io2 := newAuthedSession("b", "Bob", 1, 1)
	reg.Add(s1)
	reg.Add(s2)

	r := New(reg, nil)
	r.BroadcastToRoom(1, 1, "room.leave", map[string]any{"player": "Alice"}, s1)

	if len(io1.out) != 0 {
		t.Fatal("excluded session should not receive the broadcast")
	}
	if len(io2.out) != 1 {
		t.Fatal("the other session in the room should receive it")
	}
}

func TestBroadcastToAllHonorsAuthenticatedOnly(t *testing.T) {
	reg := session.NewRegistry(nil, time.Minute, time.Minute, nil)
	authed, ioA := newAuthedSession("a", "Alice", 0, 0)
	reg.Add(authed)

	preAuth := session.New("b", &fakeIO{}, "")
	reg.Add(preAuth)
	ioB := preAuth.IO.(*fakeIO)

	r := New(reg, nil)
	r.BroadcastToAll("shutdown.notice", nil, true)
	if len(ioA.out) != 1 || len(ioB.out) != 0 {
		t.Fatalf("authenticatedOnly=true should skip pre-auth sessions: authed=%d preauth=%d", len(ioA.out), len(ioB.out))
	}

	r.BroadcastToAll("shutdown.notice", nil, false)
	if len(ioB.out) != 1 {
		t.Fatalf("authenticatedOnly=false should reach pre-auth sessions too, got %d", len(ioB.out))
	}
}

func TestSendToRendersInRecipientLocale(t *testing.T) {
	s, io := newAuthedSession("a", "Alice", 0, 0)
	s.SetLocale("ko")
	SendTo(s, "follow.stopped", nil)
	if len(io.out) != 1 || io.out[0] == "" {
		t.Fatalf("expected a rendered line, got %v", io.out)
	}
}
