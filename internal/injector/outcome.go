package injector

// State identifies where in the mutation pipeline an operation is, or where
// it stopped. States never regress; Aborted is reachable from any
// non-terminal state.
type State int

// Pipeline states, in order.
const (
	StateIdle State = iota
	StateLoaded
	StateMutated
	StateAudited
	StateBackedUp
	StateWritten
	StateDone
	StateAborted
)

// stateNames maps states to their string form.
var stateNames = map[State]string{
	StateIdle:     "idle",
	StateLoaded:   "loaded",
	StateMutated:  "mutated",
	StateAudited:  "audited",
	StateBackedUp: "backed up",
	StateWritten:  "written",
	StateDone:     "done",
	StateAborted:  "aborted",
}

// String returns the human-readable name of the state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Action reports what a successful operation did to the targeted entry.
type Action int

// Operation actions.
const (
	// ActionNone means the operation did not complete.
	ActionNone Action = iota

	// ActionAdded means the entry did not exist before and was created.
	ActionAdded

	// ActionOverwritten means an entry with the same name was replaced.
	ActionOverwritten

	// ActionRemoved means the entry existed and was removed.
	ActionRemoved

	// ActionAbsent means a removal targeted an entry that was not there;
	// the file was left untouched.
	ActionAbsent
)

// actionNames maps actions to their string form.
var actionNames = map[Action]string{
	ActionNone:        "none",
	ActionAdded:       "added",
	ActionOverwritten: "overwritten",
	ActionRemoved:     "removed",
	ActionAbsent:      "absent",
}

// String returns the human-readable name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the structured result surfaced to the CLI layer.
type Outcome struct {
	// State is the terminal state: StateDone or StateAborted.
	State State

	// Action reports what happened to the targeted entry on success.
	Action Action

	// Path is the target configuration file.
	Path string

	// BackupPath is the backup written before the commit, empty when the
	// target did not previously exist.
	BackupPath string

	// Err carries the error kind and detail on abort, nil on success.
	Err error

	// Attempts is how many load→mutate→write cycles ran, including retries
	// after concurrent modification.
	Attempts int
}
