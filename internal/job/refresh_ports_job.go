package job

import (
	"log"

	"RelayScope/internal/ports"
)

// PortLister is the discovery side of the relay controller.
type PortLister interface {
	UDPPorts() []uint16
}

// RefreshPortsJob polls the relay's bound UDP ports into the monitored
// port set. Statically configured ports survive every refresh, so traffic
// can be watched even while the relay is down.
type RefreshPortsJob struct {
	lister    PortLister
	set       *ports.Set
	static    []uint16
	lastCount int
}

func NewRefreshPortsJob(lister PortLister, set *ports.Set, static []uint16) *RefreshPortsJob {
	return &RefreshPortsJob{lister: lister, set: set, static: static, lastCount: -1}
}

func (j *RefreshPortsJob) Run() {
	discovered := j.lister.UDPPorts()
	merged := make([]uint16, 0, len(j.static)+len(discovered))
	merged = append(merged, j.static...)
	merged = append(merged, discovered...)
	j.set.Replace(merged)

	if n := j.set.Len(); n != j.lastCount {
		log.Printf("Monitoring %d relay UDP ports: %v", n, j.set.List())
		j.lastCount = n
	}
}
