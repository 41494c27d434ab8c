package bus

import "fmt"

// Command vocabulary. Commands are sent as the literal leading bytes of a
// write transaction.
const (
	CmdEnterProgramming = "prg"
	CmdExitProgramming  = "end"
	CmdGet              = "get"
	CmdBeginSet         = "set 0"
	CmdEndSet           = "endset"
	CmdStart            = "start"
	CmdStop             = "stop"
)

// MaxChunkIndex is the highest chunk index addressable by CmdGetChunk,
// which encodes the index as a single ASCII digit.
const MaxChunkIndex = 9

// CmdGetChunk returns the "get <index>" command for the given chunk index.
func CmdGetChunk(index int) (string, error) {
	if index < 0 || index > MaxChunkIndex {
		return "", fmt.Errorf("bus: chunk index %d out of range [0, %d]", index, MaxChunkIndex)
	}

	return CmdGet + " " + string(rune('0'+index)), nil
}

// ParseGetChunk parses a "get <index>" command. It reports false for any other payload.
func ParseGetChunk(payload []byte) (int, bool) {
	if len(payload) != len(CmdGet)+2 || string(payload[:len(CmdGet)+1]) != CmdGet+" " {
		return 0, false
	}
	d := payload[len(payload)-1]
	if d < '0' || d > '9' {
		return 0, false
	}

	return int(d - '0'), true
}
