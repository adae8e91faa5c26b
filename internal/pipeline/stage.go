package pipeline

import "context"

// Stage is a single unit of work in a workflow graph. Run mutates the
// shared state and returns an error only for failures that make the rest
// of the graph meaningless. Recoverable problems go on state.Issues.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

// StageError wraps a stage failure with the name of the stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return "stage " + e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ProgressFunc receives a notification before each stage runs.
type ProgressFunc func(stage string, index, total int)

// Graph is an ordered sequence of stages executed front to back. The first
// stage error halts the run; the state keeps everything produced up to the
// failure point.
type Graph struct {
	stages   []Stage
	progress ProgressFunc
}

// NewGraph builds a graph over the given stages. progress may be nil.
func NewGraph(stages []Stage, progress ProgressFunc) *Graph {
	return &Graph{stages: stages, progress: progress}
}

// Stages returns the ordered stage names.
func (g *Graph) Stages() []string {
	names := make([]string, len(g.stages))
	for i, s := range g.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage in order against the shared state.
func (g *Graph) Run(ctx context.Context, state *State) error {
	total := len(g.stages)
	for i, stage := range g.stages {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: stage.Name(), Err: err}
		}
		if g.progress != nil {
			g.progress(stage.Name(), i, total)
		}
		if err := stage.Run(ctx, state); err != nil {
			return &StageError{Stage: stage.Name(), Err: err}
		}
	}
	return nil
}
