package driven

// Executor runs CPU-bound tasks on a bounded pool of workers so they do not
// hold up I/O-bound work.
type Executor interface {
	// Submit schedules task. It blocks while every worker is busy and
	// fails once the executor has been released.
	Submit(task func()) error

	// Release stops accepting tasks. Running tasks are allowed to finish.
	Release()
}
