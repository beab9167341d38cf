package domain

// MachineContext describes the host the generated command will run on. It is
// appended to prompts so the backend favors commands that exist there.
type MachineContext struct {
	OS    string
	Arch  string
	Shell string // login shell basename, may be empty
}
