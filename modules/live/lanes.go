package live

import "sync"

// lanes runs jobs FIFO per key. Each key gets a goroutine while it has work
// and jobs for different keys run in parallel.
type lanes struct {
	mu     sync.Mutex
	queues map[string]*lane
	wg     sync.WaitGroup
}

type lane struct {
	jobs []func()
}

func newLanes() *lanes {
	return &lanes{queues: make(map[string]*lane)}
}

// submit appends job to the lane for key, starting the lane if it is idle.
func (l *lanes) submit(key string, job func()) {
	l.wg.Add(1)

	l.mu.Lock()
	if q, ok := l.queues[key]; ok {
		q.jobs = append(q.jobs, job)
		l.mu.Unlock()
		return
	}
	q := &lane{jobs: []func(){job}}
	l.queues[key] = q
	l.mu.Unlock()

	go l.drain(key, q)
}

func (l *lanes) drain(key string, q *lane) {
	for {
		l.mu.Lock()
		if len(q.jobs) == 0 {
			delete(l.queues, key)
			l.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		l.mu.Unlock()

		job()
		l.wg.Done()
	}
}

// wait blocks until every submitted job has run.
func (l *lanes) wait() {
	l.wg.Wait()
}

// active returns the number of lanes with pending or running work.
func (l *lanes) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues)
}
