package agent

// Interrupt kinds surfaced to the human operator.
const (
	// KindClarification asks the user to restate an ambiguous query.
	KindClarification = "clarification"

	// KindWebSearch asks the user to approve an outbound web search.
	// Resume data "yes" approves; anything else declines.
	KindWebSearch = "web_search"
)

// Interrupt is a first-class suspension signal: a node returns one instead
// of completing, the driver parks the thread, and the message is surfaced
// to the human.
type Interrupt struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Resume carries the human's raw answer back into the suspended node.
type Resume struct {
	Data string `json:"data"`
}

// Approved reports whether a web-search confirmation was accepted.
// Only the exact string "yes" approves.
func (r Resume) Approved() bool {
	return r.Data == "yes"
}
