package morpheus

// RegistryOption configures a [Registry] at construction time, using
// the standard functional-options pattern.
type RegistryOption interface {
	applyRegistry(*registryOptions)
}

type registryOptions struct {
	logger Logger
}

type registryOptionFunc func(*registryOptions)

func (f registryOptionFunc) applyRegistry(o *registryOptions) { f(o) }

// WithLogger attaches a structured [Logger] to the registry. Every
// worker registered through it inherits the same logger. Defaults to
// a no-op logger if never set.
func WithLogger(l Logger) RegistryOption {
	return registryOptionFunc(func(o *registryOptions) { o.logger = l })
}

func resolveRegistryOptions(opts []RegistryOption) *registryOptions {
	cfg := &registryOptions{logger: NewNoOpLogger()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRegistry(cfg)
	}
	return cfg
}

// WorkerOption configures a single [Worker] at registration time.
type WorkerOption interface {
	applyWorker(*workerOptions)
}

type workerOptions struct {
	scheduler        Scheduler
	priority         *uint8
	escalationPolicy *EscalationPolicy
}

type workerOptionFunc func(*workerOptions)

func (f workerOptionFunc) applyWorker(o *workerOptions) { f(o) }

// WithScheduler binds the [Scheduler] that [Worker.AsyncCheckpoint]
// and [Worker.ForceYield] use to cede control to the host task loop.
// If never set, those two operations degrade to acknowledging the
// hint without suspending (there is no host to cede control to).
func WithScheduler(s Scheduler) WorkerOption {
	return workerOptionFunc(func(o *workerOptions) { o.scheduler = s })
}

// WithPriority sets the worker's initial advisory runtime_priority (0-255).
func WithPriority(p uint8) WorkerOption {
	return workerOptionFunc(func(o *workerOptions) { o.priority = &p })
}

// WithEscalationPolicy sets the worker's initial escalation_policy.
func WithEscalationPolicy(p EscalationPolicy) WorkerOption {
	return workerOptionFunc(func(o *workerOptions) { o.escalationPolicy = &p })
}

func resolveWorkerOptions(opts []WorkerOption) *workerOptions {
	cfg := &workerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyWorker(cfg)
	}
	return cfg
}
