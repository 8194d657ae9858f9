package command

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

func newSession() (*session.Session, *fakeIO) {
	io := &fakeIO{}
	s := session.New("s1", io, "")
	s.Authenticate("p1", "Hero", false, "en", 0, 0)
	return s, io
}

func echoHandler(marker string) Handler {
	return func(ctx *Context, args []string) Result {
		return Result{ResultType: ResultSuccess, Message: marker}
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	r := NewRegistry(nil)
	sess, io := newSession()
	r.Dispatch(&Context{}, sess, "frobnicate")

	if len(io.out) != 1 {
		t.Fatalf("expected one response line, got %v", io.out)
	}
}

func TestDispatchRunsRegisteredHandler(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "look", Handler: echoHandler("you see a room")})
	sess, io := newSession()

	r.Dispatch(&Context{}, sess, "look")
	if len(io.out) != 1 || io.out[0] != "you see a room" {
		t.Fatalf("got %v", io.out)
	}
}

func TestDispatchGatesAdminCommands(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "goto", IsAdmin: true, Handler: echoHandler("teleported")})
	sess, io := newSession()

	r.Dispatch(&Context{}, sess, "goto 5 5")
	if len(io.out) != 1 || io.out[0] == "teleported" {
		t.Fatalf("expected a non-admin caller to be denied, got %v", io.out)
	}

	sess.Authenticate("p1", "Admin", true, "en", 0, 0)
	io.out = nil
	r.Dispatch(&Context{}, sess, "goto 5 5")
	if len(io.out) != 1 || io.out[0] != "teleported" {
		t.Fatalf("expected an admin caller to succeed, got %v", io.out)
	}
}

func TestDispatchGatesCombatOnlyCommands(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "attack", CombatGate: true, Handler: echoHandler("you strike")})
	sess, io := newSession()

	r.Dispatch(&Context{}, sess, "attack")
	if len(io.out) != 1 || io.out[0] == "you strike" {
		t.Fatalf("expected attack to be rejected outside combat, got %v", io.out)
	}

	sess.EnterCombat("combat-1")
	io.out = nil
	r.Dispatch(&Context{}, sess, "attack")
	if len(io.out) != 1 || io.out[0] != "you strike" {
		t.Fatalf("expected attack to succeed in combat, got %v", io.out)
	}
}

func TestDispatchNumericHotkeysInCombat(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "attack", CombatGate: true, Handler: echoHandler("strike")})
	r.Register(&Command{Name: "defend", CombatGate: true, Handler: echoHandler("brace")})
	r.Register(&Command{Name: "flee", CombatGate: true, Handler: echoHandler("run")})
	sess, io := newSession()
	sess.EnterCombat("combat-1")

	r.Dispatch(&Context{}, sess, "2")
	if len(io.out) != 1 || io.out[0] != "brace" {
		t.Fatalf("expected \"2\" to resolve to defend, got %v", io.out)
	}
}

func TestDispatchRepeatsLastCommand(t *testing.T) {
	r := NewRegistry(nil)
	calls := 0
	r.Register(&Command{Name: "look", Handler: func(ctx *Context, args []string) Result {
		calls++
		return Result{ResultType: ResultSuccess, Message: "room"}
	}})
	sess, _ := newSession()

	r.Dispatch(&Context{}, sess, "look")
	r.Dispatch(&Context{}, sess, ".")
	if calls != 2 {
		t.Fatalf("expected \".\" to replay the last command, got %d calls", calls)
	}
}

func TestDispatchRepeatWithNoHistory(t *testing.T) {
	r := NewRegistry(nil)
	sess, io := newSession()
	r.Dispatch(&Context{}, sess, ".")
	if len(io.out) != 1 {
		t.Fatalf("expected a \"nothing to repeat\" message, got %v", io.out)
	}
}

func TestReservedMovementAliasCannotBeStolen(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "north", Aliases: []string{"n"}, Handler: echoHandler("walked north")})
	r.Register(&Command{Name: "news", Aliases: []string{"n"}, Handler: echoHandler("read the news")})

	sess, io := newSession()
	r.Dispatch(&Context{}, sess, "n")
	if len(io.out) != 1 || io.out[0] != "walked north" {
		t.Fatalf("expected the reserved alias \"n\" to stay bound to north, got %v", io.out)
	}
}

func TestErrorResultDoesNotUpdateLastCommand(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "fail", Handler: func(ctx *Context, args []string) Result {
		return Result{ResultType: ResultError, Message: "nope"}
	}})
	sess, _ := newSession()
	r.Dispatch(&Context{}, sess, "fail")
	if sess.LastCommand() != "" {
		t.Fatalf("an error result should not be remembered for repeat, got %q", sess.LastCommand())
	}
}
