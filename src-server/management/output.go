package management

import (
	"fmt"
	"strings"
	"sync"
)

// Output buffers the lines a management command prints.
type Output struct {
	mu     sync.Mutex
	lines  []string
	public bool
}

// MakePublic asks for the result to be shown to the whole channel. It only
// takes effect when the command succeeds.
func (o *Output) MakePublic() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.public = true
}

func (o *Output) Public() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.public
}

func (o *Output) Puts(lines ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, lines...)
}

func (o *Output) Printf(format string, args ...any) {
	o.Puts(fmt.Sprintf(format, args...))
}

func (o *Output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "\n")
}
