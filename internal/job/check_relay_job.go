package job

import (
	"log"
	"sync"
)

// Liveness is the health side of the relay controller.
type Liveness interface {
	IsRunning() bool
}

// CheckRelayJob watches the relay process and records up/down transitions.
// It only observes; the monitor never restarts the relay on its own.
type CheckRelayJob struct {
	live Liveness

	mu      sync.Mutex
	running bool
	known   bool
}

func NewCheckRelayJob(live Liveness) *CheckRelayJob {
	return &CheckRelayJob{live: live}
}

func (j *CheckRelayJob) Run() {
	now := j.live.IsRunning()

	j.mu.Lock()
	changed := !j.known || now != j.running
	j.running = now
	j.known = true
	j.mu.Unlock()

	if changed {
		if now {
			log.Println("Relay is running.")
		} else {
			log.Println("Relay is not running, waiting for it to come up...")
		}
	}
}

// Running reports the relay state as of the last check.
func (j *CheckRelayJob) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
