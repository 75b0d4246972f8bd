package cli

// session holds the REPL's "current board" — the same single piece of
// state original_source/src/cli.rs keeps in its current_user mutex, set
// by the board <name> command and defaulted onto every board-scoped
// command that doesn't pass --board explicitly.
type session struct {
	board string
}

func (s *session) has() bool { return s.board != "" }
