package service

import "sync"

// classroomLocks serializes multi-step mutations per classroom within
// this process. The store-level compare-and-set operations still decide
// races that cross process boundaries; the lock keeps the blanket
// updates (release-then-claim, clear-speaking-then-set) from
// interleaving locally.
type classroomLocks struct {
	locks sync.Map // classroomID -> *sync.Mutex
}

// NewClassroomLocks creates the shared lock table. All services that
// mutate the same classrooms must share one instance.
func NewClassroomLocks() *classroomLocks {
	return &classroomLocks{}
}

func (l *classroomLocks) lock(classroomID string) func() {
	v, _ := l.locks.LoadOrStore(classroomID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
