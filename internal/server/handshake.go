// File: internal/server/handshake.go
// MUD Engine - pre-game handshake: the Connected -> Menu -> Authenticated
// leg of the session FSM. Adapted from the teacher's processMessage
// state-switch (handleLogin/handlePassword/handleMFA) over a real
// username/password/TOTP flow backed by internal/auth and
// internal/database instead of the teacher's validate* stubs.
package server

import (
	"context"
	"strings"
	"time"

	"mudengine/internal/auth"
	"mudengine/internal/command"
	"mudengine/internal/config"
	"mudengine/internal/database"
	"mudengine/internal/locale"
	"mudengine/internal/session"
)

func secondsToDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}

const welcomeBanner = `
Welcome to the MUD Engine.
Type REGISTER <username> <password> to create an account.
Type LOGIN <username> <password> to sign in.
`

// Server owns every shared dependency a connection's game loop needs
// beyond what Context already bundles.
type Server struct {
	Ctx     *command.Context
	Cfg     *config.Config
	Commands *command.Registry
}

// HandleConnection runs one connection end to end: handshake, then the
// command loop, until the session disconnects.
func (s *Server) HandleConnection(sess *session.Session) {
	s.Ctx.Sessions.Add(sess)
	sess.IO.WriteLine(welcomeBanner)
	sess.SetState(session.StateMenu)

	if !s.handshake(sess) {
		s.Ctx.Sessions.Remove(sess)
		return
	}

	s.gameLoop(sess)
}

// handshake drives the menu state until the session authenticates or
// disconnects. Returns false if the connection should be dropped.
func (s *Server) handshake(sess *session.Session) bool {
	idleTimeout := 5 * 60 // seconds grace on the menu before disconnecting
	for {
		line, ok := sess.IO.ReadLine(secondsToDuration(idleTimeout))
		if !ok {
			sess.IO.Close("menu timeout")
			return false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		verb := strings.ToUpper(fields[0])

		switch verb {
		case "REGISTER":
			if s.handleRegister(sess, fields[1:]) {
				return true
			}
		case "LOGIN":
			if s.handleLogin(sess, fields[1:]) {
				return true
			}
		case "QUIT", "EXIT":
			sess.IO.WriteLine("Goodbye!")
			sess.IO.Close("quit at menu")
			return false
		default:
			sess.IO.WriteLine("Unknown command. Use REGISTER or LOGIN.")
		}
	}
}

func (s *Server) handleRegister(sess *session.Session, args []string) bool {
	if len(args) < 2 {
		sess.IO.WriteLine("Usage: REGISTER <username> <password>")
		return false
	}
	username, password := args[0], args[1]

	existing, err := database.GetPlayerByUsername(username)
	if err != nil {
		sess.IO.WriteLine("Registration failed, try again.")
		return false
	}
	if existing != nil {
		sess.IO.WriteLine("That username is taken.")
		return false
	}

	hash, err := auth.HashPassword(password, s.Cfg.CredentialHashCost)
	if err != nil {
		sess.IO.WriteLine("Registration failed, try again.")
		return false
	}

	p := &database.Player{
		Username:        username,
		PasswordHash:    hash,
		DisplayName:     username,
		PreferredLocale: string(locale.English),
	}
	if err := database.CreatePlayer(p); err != nil {
		sess.IO.WriteLine("Registration failed, try again.")
		return false
	}

	sess.IO.WriteLine("Account created. You are logged in.")
	return s.completeLogin(sess, p)
}

func (s *Server) handleLogin(sess *session.Session, args []string) bool {
	if len(args) < 2 {
		sess.IO.WriteLine("Usage: LOGIN <username> <password>")
		return false
	}
	username, password := args[0], args[1]

	p, err := database.GetPlayerByUsername(username)
	if err != nil || p == nil || !auth.CheckPassword(p.PasswordHash, password) {
		if p != nil {
			attempts := sess.IncAuthAttempt()
			if attempts >= 5 {
				sess.IO.WriteLine("Too many failed attempts.")
				sess.IO.Close("auth attempts exceeded")
				return false
			}
		}
		sess.IO.WriteLine("Invalid username or password.")
		return false
	}

	if p.MFASecret != "" {
		sess.IO.EnableEcho()
		sess.IO.WriteLine("Enter your 6-digit authentication code:")
		code, ok := sess.IO.ReadLine(secondsToDuration(60))
		sess.IO.DisableEcho()
		if !ok || !auth.ValidateMFA(p.MFASecret, strings.TrimSpace(code)) {
			sess.IO.WriteLine("Invalid code.")
			return false
		}
	}

	return s.completeLogin(sess, p)
}

func (s *Server) completeLogin(sess *session.Session, p *database.Player) bool {
	if existing, ok := s.Ctx.Sessions.GetByPlayerID(p.ID); ok {
		existing.IO.WriteLine("Logged in from another connection.")
		existing.IO.Close("duplicate login")
	}

	room := s.Ctx.Store.GetRoomAt(0, 0)
	x, y := 0, 0
	if p.LastRoomID.Valid {
		if r, err := s.Ctx.Store.GetRoom(p.LastRoomID.String); err == nil {
			room = r
		}
	}
	if room != nil {
		x, y = room.X, room.Y
	}

	loc := p.PreferredLocale
	if loc == "" {
		loc = string(locale.English)
	}
	sess.Authenticate(p.ID, p.DisplayName, p.IsAdmin, loc, x, y)
	s.Ctx.Sessions.BindPlayer(sess, p.ID)
	database.UpdatePlayerLoginStamp(p.ID)
	database.GetCache().SetActiveSession(context.Background(), p.ID, sess.ID)

	s.Ctx.Mover.RenderRoomView(sess)
	return true
}

// gameLoop reads lines and dispatches them until disconnect.
func (s *Server) gameLoop(sess *session.Session) {
	defer func() {
		s.Ctx.Sessions.Remove(sess)
		if pid := sess.PlayerID(); pid != "" {
			database.UpdatePlayerLogoutStamp(pid)
			database.GetCache().ClearActiveSession(context.Background(), pid)
		}
	}()

	idleTimeout := secondsToDuration(s.Cfg.SessionIdleTimeoutMins * 60)
	for {
		line, ok := sess.IO.ReadLine(idleTimeout)
		if !ok {
			sess.IO.WriteLine("Idle timeout, disconnecting.")
			sess.IO.Close("idle timeout")
			return
		}
		s.Commands.Dispatch(s.Ctx, sess, line)
	}
}
