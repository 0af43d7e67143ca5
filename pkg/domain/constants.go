package domain

const (
	// KeyBackgroundTasks is the state key holding the set of background task
	// names recorded during forward simulation.
	KeyBackgroundTasks = "background_tasks"

	// DefaultRootTask is the task decomposed when no explicit roots are given.
	DefaultRootTask = "root"

	// DefaultPriority is the method priority applied by construction surfaces
	// (DSL, codec, loaders) when none is declared. Lower values are tried first.
	DefaultPriority = 100
)
